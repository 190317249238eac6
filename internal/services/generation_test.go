package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"festival-bot-backend/internal/models"
)

type stubJobStore struct {
	mu     sync.Mutex
	nextID uint
	jobs   map[uint]*models.GenerationJob
}

func newStubJobStore() *stubJobStore {
	return &stubJobStore{jobs: make(map[uint]*models.GenerationJob)}
}

func (s *stubJobStore) JobByParticipant(participantID uint) (*models.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.GenerationJob
	for _, j := range s.jobs {
		if j.ParticipantID != participantID {
			continue
		}
		if latest == nil || j.ID > latest.ID {
			latest = j
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *stubJobStore) CreateJob(j *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	j.ID = s.nextID
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *stubJobStore) SaveJob(j *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *stubJobStore) DeleteJob(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

// stubGenerator counts external calls and can be told to fail or report
// the pack name as taken.
type stubGenerator struct {
	mu          sync.Mutex
	stylizeN    int
	createN     int
	failStylize bool
	packTaken   bool
	verifyOK    bool
	block       chan struct{}
}

func (g *stubGenerator) Stylize(photoURL string) (string, error) {
	g.mu.Lock()
	g.stylizeN++
	fail := g.failStylize
	block := g.block
	g.mu.Unlock()
	if block != nil {
		<-block
	}
	if fail {
		return "", errors.New("stylize failed")
	}
	return "https://img.example/styled.png", nil
}

func (g *stubGenerator) RemoveBackground(imageURL string) (string, error) {
	return "https://img.example/clean.png", nil
}

func (g *stubGenerator) Compose(imageURL string) (string, error) {
	return "https://img.example/final.png", nil
}

func (g *stubGenerator) CreatePack(chatID int64, assetURL string) (string, string, error) {
	g.mu.Lock()
	g.createN++
	taken := g.packTaken
	g.mu.Unlock()
	if taken {
		return "", "", fmt.Errorf("createNewStickerSet: %w", ErrPackExists)
	}
	return "https://t.me/addstickers/" + g.PackName(chatID), "file-1", nil
}

func (g *stubGenerator) VerifyPack(chatID int64) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyOK {
		return "https://t.me/addstickers/" + g.PackName(chatID), true, nil
	}
	return "", false, nil
}

func (g *stubGenerator) PackName(chatID int64) string {
	return fmt.Sprintf("fest_%d_by_testbot", chatID)
}

func (g *stubGenerator) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stylizeN, g.createN
}

type stubNotifier struct {
	mu     sync.Mutex
	ready  []string
	failed []int64
	done   chan struct{}
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{done: make(chan struct{}, 16)}
}

func (n *stubNotifier) NotifyPackReady(chatID int64, packURL string) {
	n.mu.Lock()
	n.ready = append(n.ready, packURL)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *stubNotifier) NotifyPackFailed(chatID int64) {
	n.mu.Lock()
	n.failed = append(n.failed, chatID)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *stubNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestSubmitAndComplete(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)
	defer p.Stop()

	outcome, _, err := p.Submit(1, 100, "https://img.example/selfie.jpg")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome != SubmitAccepted {
		t.Fatalf("outcome = %v, want SubmitAccepted", outcome)
	}

	notifier.wait(t)

	status, packURL, err := p.Status(1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != models.JobStatusOK {
		t.Fatalf("status = %q, want ok", status)
	}
	if packURL == "" {
		t.Fatal("packURL empty after completion")
	}
}

func TestSubmitWhilePending(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{block: make(chan struct{})}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)

	outcome, _, err := p.Submit(1, 100, "https://img.example/a.jpg")
	if err != nil || outcome != SubmitAccepted {
		t.Fatalf("first submit = (%v, %v), want (SubmitAccepted, nil)", outcome, err)
	}

	outcome, _, err = p.Submit(1, 100, "https://img.example/b.jpg")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if outcome != SubmitAlreadyPending {
		t.Fatalf("second submit outcome = %v, want SubmitAlreadyPending", outcome)
	}

	close(gen.block)
	notifier.wait(t)
	p.Stop()

	stylizeN, _ := gen.calls()
	if stylizeN != 1 {
		t.Fatalf("stylize calls = %d, want 1", stylizeN)
	}
}

func TestSubmitAfterCompletionReturnsSamePack(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)
	defer p.Stop()

	if _, _, err := p.Submit(1, 100, "https://img.example/a.jpg"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.wait(t)

	_, firstURL, _ := p.Status(1)

	outcome, packURL, err := p.Submit(1, 100, "https://img.example/b.jpg")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if outcome != SubmitAlreadyCompleted {
		t.Fatalf("resubmit outcome = %v, want SubmitAlreadyCompleted", outcome)
	}
	if packURL != firstURL {
		t.Fatalf("packURL = %q, want %q", packURL, firstURL)
	}

	stylizeN, _ := gen.calls()
	if stylizeN != 1 {
		t.Fatalf("stylize calls = %d, want 1 (no regeneration)", stylizeN)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{block: make(chan struct{})}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 1)
	p.Start(1)

	// First submit occupies the worker, second fills the queue.
	if _, _, err := p.Submit(1, 100, "u"); err != nil {
		t.Fatalf("submit 1: %v", err)
	}

	// The worker may or may not have picked up the first task yet; keep
	// submitting distinct participants until the queue rejects one.
	var sawFull bool
	for i := uint(2); i <= 4; i++ {
		_, _, err := p.Submit(i, int64(100+i), "u")
		if err == ErrQueueFull {
			sawFull = true
			// No pending row may survive a rejected admission.
			job, _ := store.JobByParticipant(i)
			if job != nil {
				t.Fatalf("rejected submission left job %+v", job)
			}
			break
		}
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if !sawFull {
		t.Fatal("queue never reported full")
	}

	close(gen.block)
	notifier.wait(t)
	p.Stop()
}

func TestFailedJobIsResubmittable(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{failStylize: true}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)
	defer p.Stop()

	if _, _, err := p.Submit(1, 100, "u"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.wait(t)

	status, _, _ := p.Status(1)
	if status != models.JobStatusFailed {
		t.Fatalf("status = %q, want failed", status)
	}

	gen.mu.Lock()
	gen.failStylize = false
	gen.mu.Unlock()

	outcome, _, err := p.Submit(1, 100, "u")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if outcome != SubmitAccepted {
		t.Fatalf("resubmit outcome = %v, want SubmitAccepted", outcome)
	}
	notifier.wait(t)

	status, _, _ = p.Status(1)
	if status != models.JobStatusOK {
		t.Fatalf("status after retry = %q, want ok", status)
	}
}

func TestPackExistsRecovered(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{packTaken: true, verifyOK: true}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)
	defer p.Stop()

	if _, _, err := p.Submit(1, 100, "u"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.wait(t)

	status, packURL, _ := p.Status(1)
	if status != models.JobStatusOK {
		t.Fatalf("status = %q, want ok (recovered)", status)
	}
	if packURL != "https://t.me/addstickers/fest_100_by_testbot" {
		t.Fatalf("packURL = %q", packURL)
	}
}

func TestPackExistsEmptySetFails(t *testing.T) {
	store := newStubJobStore()
	gen := &stubGenerator{packTaken: true, verifyOK: false}
	notifier := newStubNotifier()
	p := NewGenerationPipeline(store, gen, notifier, nil, 8)
	p.Start(1)
	defer p.Stop()

	if _, _, err := p.Submit(1, 100, "u"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.wait(t)

	status, _, _ := p.Status(1)
	if status != models.JobStatusFailed {
		t.Fatalf("status = %q, want failed", status)
	}
}
