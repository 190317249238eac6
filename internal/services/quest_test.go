package services

import (
	"sync"
	"testing"
	"time"

	"festival-bot-backend/internal/models"
)

type stubQuestStore struct {
	mu   sync.Mutex
	rows map[uint]*models.QuestProgress
}

func newStubQuestStore() *stubQuestStore {
	return &stubQuestStore{rows: make(map[uint]*models.QuestProgress)}
}

func (s *stubQuestStore) QuestProgress(participantID uint) (*models.QuestProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[participantID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *stubQuestStore) SaveQuestProgress(p *models.QuestProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.rows[p.ParticipantID] = &cp
	return nil
}

func TestRegisterStepDeduplicates(t *testing.T) {
	tracker := NewQuestTracker(newStubQuestStore(), 9)

	outcome, err := tracker.RegisterStep(1, 3)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if outcome != StepUpdated {
		t.Fatalf("outcome = %v, want StepUpdated", outcome)
	}

	for i := 0; i < 5; i++ {
		outcome, err = tracker.RegisterStep(1, 3)
		if err != nil {
			t.Fatalf("repeat register: %v", err)
		}
		if outcome != StepAlreadyDone {
			t.Fatalf("repeat outcome = %v, want StepAlreadyDone", outcome)
		}
	}

	done, total, err := tracker.ProgressSummary(1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if done != 1 || total != 9 {
		t.Fatalf("summary = (%d, %d), want (1, 9)", done, total)
	}
}

func TestRegisterStepOutOfRange(t *testing.T) {
	store := newStubQuestStore()
	tracker := NewQuestTracker(store, 9)

	for _, step := range []int{0, -1, 10, 100} {
		outcome, err := tracker.RegisterStep(1, step)
		if err != nil {
			t.Fatalf("register %d: %v", step, err)
		}
		if outcome != StepOutOfRange {
			t.Fatalf("register %d outcome = %v, want StepOutOfRange", step, outcome)
		}
	}
	if len(store.rows) != 0 {
		t.Fatalf("out-of-range steps must not persist progress")
	}
}

func TestQuestCompletesExactlyOnce(t *testing.T) {
	const total = 5
	store := newStubQuestStore()
	tracker := NewQuestTracker(store, total)
	fixed := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return fixed }

	for step := 1; step <= total; step++ {
		if _, err := tracker.RegisterStep(7, step); err != nil {
			t.Fatalf("register %d: %v", step, err)
		}
	}

	row := store.rows[7]
	if !row.Completed {
		t.Fatalf("quest not marked completed")
	}
	if row.CompletedAt == nil || !row.CompletedAt.Equal(fixed) {
		t.Fatalf("CompletedAt = %v, want %v", row.CompletedAt, fixed)
	}

	// Re-registering after completion must not move the timestamp.
	later := fixed.Add(2 * time.Hour)
	tracker.now = func() time.Time { return later }
	outcome, err := tracker.RegisterStep(7, 1)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if outcome != StepAlreadyDone {
		t.Fatalf("re-register outcome = %v, want StepAlreadyDone", outcome)
	}
	if !store.rows[7].CompletedAt.Equal(fixed) {
		t.Fatalf("CompletedAt moved on re-register")
	}
}

func TestConcurrentRegistrationKeepsEveryStep(t *testing.T) {
	// A QR terminal post and a deep link can land at the same time; no
	// step may be lost to a concurrent read-modify-write.
	store := newStubQuestStore()
	tracker := NewQuestTracker(store, 9)

	var wg sync.WaitGroup
	for step := 1; step <= 9; step++ {
		wg.Add(1)
		go func(step int) {
			defer wg.Done()
			if _, err := tracker.RegisterStep(1, step); err != nil {
				t.Errorf("register %d: %v", step, err)
			}
		}(step)
	}
	wg.Wait()

	steps, err := tracker.CompletedSteps(1)
	if err != nil {
		t.Fatalf("completed steps: %v", err)
	}
	if len(steps) != 9 {
		t.Fatalf("steps = %v, want all 9", steps)
	}
	if !store.rows[1].Completed {
		t.Fatal("quest not marked completed")
	}
}

func TestValidStepsFiltersBadRows(t *testing.T) {
	store := newStubQuestStore()
	store.rows[1] = &models.QuestProgress{
		ParticipantID:  1,
		CompletedSteps: "[3, 3, 0, 42, 1]",
	}
	tracker := NewQuestTracker(store, 9)

	steps, err := tracker.CompletedSteps(1)
	if err != nil {
		t.Fatalf("completed steps: %v", err)
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 3 {
		t.Fatalf("steps = %v, want [1 3]", steps)
	}
}

func TestValidStepsToleratesCorruptJSON(t *testing.T) {
	store := newStubQuestStore()
	store.rows[1] = &models.QuestProgress{ParticipantID: 1, CompletedSteps: "not json"}
	tracker := NewQuestTracker(store, 9)

	done, total, err := tracker.ProgressSummary(1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if done != 0 || total != 9 {
		t.Fatalf("summary = (%d, %d), want (0, 9)", done, total)
	}
}
