package services

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"festival-bot-backend/internal/models"
)

type StepOutcome int

const (
	StepUpdated StepOutcome = iota
	StepAlreadyDone
	StepOutOfRange
)

// QuestStore is the persistence surface for quest progress.
type QuestStore interface {
	QuestProgress(participantID uint) (*models.QuestProgress, error)
	SaveQuestProgress(p *models.QuestProgress) error
}

// QuestTracker records discovered quest checkpoints. Steps live in [1,N];
// the completed set is kept sorted and deduplicated, and the completion
// flag flips exactly once when the set reaches N.
type QuestTracker struct {
	store      QuestStore
	totalSteps int
	now        func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewQuestTracker(store QuestStore, totalSteps int) *QuestTracker {
	return &QuestTracker{
		store:      store,
		totalSteps: totalSteps,
		now:        time.Now,
		locks:      make(map[uint]*sync.Mutex),
	}
}

// participantLock serializes step registration per participant. The chat
// path is already serialized per chat, but the QR terminal endpoint posts
// steps concurrently with it.
func (t *QuestTracker) participantLock(participantID uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[participantID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[participantID] = l
	}
	return l
}

func (t *QuestTracker) TotalSteps() int { return t.totalSteps }

func decodeSteps(raw string) []int {
	var steps []int
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil
	}
	return steps
}

// validSteps drops anything outside [1,N] and deduplicates, so a bad row
// degrades to a smaller count instead of an error.
func (t *QuestTracker) validSteps(raw string) []int {
	seen := make(map[int]bool)
	var steps []int
	for _, s := range decodeSteps(raw) {
		if s >= 1 && s <= t.totalSteps && !seen[s] {
			seen[s] = true
			steps = append(steps, s)
		}
	}
	sort.Ints(steps)
	return steps
}

// RegisterStep marks one checkpoint found. Re-registering a step already
// in the set is a no-op answered StepAlreadyDone.
func (t *QuestTracker) RegisterStep(participantID uint, step int) (StepOutcome, error) {
	if step < 1 || step > t.totalSteps {
		return StepOutOfRange, nil
	}

	l := t.participantLock(participantID)
	l.Lock()
	defer l.Unlock()

	progress, err := t.store.QuestProgress(participantID)
	if err != nil {
		return 0, err
	}
	if progress == nil {
		progress = &models.QuestProgress{ParticipantID: participantID, CompletedSteps: "[]"}
	}

	steps := t.validSteps(progress.CompletedSteps)
	for _, s := range steps {
		if s == step {
			return StepAlreadyDone, nil
		}
	}

	steps = append(steps, step)
	sort.Ints(steps)
	encoded, err := json.Marshal(steps)
	if err != nil {
		return 0, err
	}
	progress.CompletedSteps = string(encoded)

	if len(steps) == t.totalSteps && !progress.Completed {
		progress.Completed = true
		completedAt := t.now()
		progress.CompletedAt = &completedAt
	}

	if err := t.store.SaveQuestProgress(progress); err != nil {
		return 0, err
	}
	return StepUpdated, nil
}

// ProgressSummary reports (found, total) for progress captions.
func (t *QuestTracker) ProgressSummary(participantID uint) (int, int, error) {
	progress, err := t.store.QuestProgress(participantID)
	if err != nil {
		return 0, t.totalSteps, err
	}
	if progress == nil {
		return 0, t.totalSteps, nil
	}
	return len(t.validSteps(progress.CompletedSteps)), t.totalSteps, nil
}

// CompletedSteps returns the sorted set of valid found steps.
func (t *QuestTracker) CompletedSteps(participantID uint) ([]int, error) {
	progress, err := t.store.QuestProgress(participantID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, nil
	}
	return t.validSteps(progress.CompletedSteps), nil
}
