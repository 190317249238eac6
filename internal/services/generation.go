package services

import (
	"errors"
	"log"
	"sync"

	"festival-bot-backend/internal/models"
)

type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitAlreadyPending
	SubmitAlreadyCompleted
)

// ErrQueueFull is returned when the work queue is at capacity; the caller
// should tell the participant to try again later rather than buffer.
var ErrQueueFull = errors.New("generation queue is full")

// ErrPackExists is returned by the pack-registration stage when the
// deterministic pack name is already taken on the external side. The
// pipeline verifies the existing pack and recovers it as a success.
var ErrPackExists = errors.New("sticker pack name already taken")

// JobStore is the persistence surface for generation jobs.
type JobStore interface {
	JobByParticipant(participantID uint) (*models.GenerationJob, error)
	CreateJob(j *models.GenerationJob) error
	SaveJob(j *models.GenerationJob) error
	DeleteJob(id uint) error
}

// StickerGenerator is the external multi-stage generation adapter. Every
// stage is a slow remote call and must only run on pipeline workers.
type StickerGenerator interface {
	Stylize(photoURL string) (string, error)
	RemoveBackground(imageURL string) (string, error)
	Compose(imageURL string) (string, error)
	CreatePack(chatID int64, assetURL string) (packURL, fileID string, err error)
	VerifyPack(chatID int64) (packURL string, populated bool, err error)
	PackName(chatID int64) string
}

// GenerationNotifier delivers job results back to the chat.
type GenerationNotifier interface {
	NotifyPackReady(chatID int64, packURL string)
	NotifyPackFailed(chatID int64)
}

type generationTask struct {
	jobID         uint
	participantID uint
	chatID        int64
	photoURL      string
}

// GenerationPipeline accepts at most one unresolved job per participant
// and executes it on a bounded worker pool. Admission is synchronous and
// fast; the external calls all happen on workers. A completed pack is
// never regenerated, and a failed job is resubmittable.
type GenerationPipeline struct {
	store     JobStore
	generator StickerGenerator
	notifier  GenerationNotifier
	errCount  *ConfigStore

	mu    sync.Mutex
	queue chan generationTask
	wg    sync.WaitGroup
}

func NewGenerationPipeline(store JobStore, generator StickerGenerator, notifier GenerationNotifier, errCount *ConfigStore, queueCap int) *GenerationPipeline {
	if queueCap <= 0 {
		queueCap = 32
	}
	return &GenerationPipeline{
		store:     store,
		generator: generator,
		notifier:  notifier,
		errCount:  errCount,
		queue:     make(chan generationTask, queueCap),
	}
}

// Start launches the worker pool. Workers exit when Stop closes the queue.
func (p *GenerationPipeline) Start(workers int) {
	if workers <= 0 {
		workers = 3
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.queue {
				p.process(task)
			}
			log.Printf("[generation] worker %d stopped", id)
		}(i)
	}
	log.Printf("[generation] started %d workers", workers)
}

// Stop drains in-flight work and returns once all workers have exited.
// New submissions after Stop panic; call only on shutdown.
func (p *GenerationPipeline) Stop() {
	close(p.queue)
	p.wg.Wait()
}

// Submit admits a generation request. Outcomes:
//   - SubmitAlreadyCompleted: a pack already exists; packURL carries it.
//   - SubmitAlreadyPending: an unresolved job is in flight.
//   - SubmitAccepted: a pending job was recorded and enqueued.
//
// A full queue fails the admission with ErrQueueFull and leaves no
// pending record behind.
func (p *GenerationPipeline) Submit(participantID uint, chatID int64, photoURL string) (SubmitOutcome, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	job, err := p.store.JobByParticipant(participantID)
	if err != nil {
		return 0, "", err
	}
	if job != nil {
		switch job.Status {
		case models.JobStatusOK:
			return SubmitAlreadyCompleted, job.PackURL, nil
		case models.JobStatusPending:
			return SubmitAlreadyPending, "", nil
		case models.JobStatusFailed:
			// A failed attempt clears on resubmission.
			if err := p.store.DeleteJob(job.ID); err != nil {
				return 0, "", err
			}
		}
	}

	pending := &models.GenerationJob{
		ParticipantID: participantID,
		Status:        models.JobStatusPending,
		PackName:      p.generator.PackName(chatID),
	}
	if err := p.store.CreateJob(pending); err != nil {
		return 0, "", err
	}

	select {
	case p.queue <- generationTask{jobID: pending.ID, participantID: participantID, chatID: chatID, photoURL: photoURL}:
		return SubmitAccepted, "", nil
	default:
		if err := p.store.DeleteJob(pending.ID); err != nil {
			log.Printf("[generation] rollback pending job %d: %v", pending.ID, err)
		}
		return 0, "", ErrQueueFull
	}
}

// Status reports the participant's job state: one of "none", "pending",
// "ok" (packURL set), or "failed".
func (p *GenerationPipeline) Status(participantID uint) (string, string, error) {
	job, err := p.store.JobByParticipant(participantID)
	if err != nil {
		return "", "", err
	}
	if job == nil {
		return models.JobStatusNone, "", nil
	}
	return job.Status, job.PackURL, nil
}

func (p *GenerationPipeline) process(task generationTask) {
	packURL, fileID, err := p.runStages(task)
	if err != nil {
		log.Printf("[generation] job %d failed: %v", task.jobID, err)
		p.markFailed(task)
		return
	}
	p.markCompleted(task, packURL, fileID)
}

func (p *GenerationPipeline) runStages(task generationTask) (string, string, error) {
	styled, err := p.generator.Stylize(task.photoURL)
	if err != nil {
		return "", "", err
	}

	clean, err := p.generator.RemoveBackground(styled)
	if err != nil {
		return "", "", err
	}

	composed, err := p.generator.Compose(clean)
	if err != nil {
		return "", "", err
	}

	packURL, fileID, err := p.generator.CreatePack(task.chatID, composed)
	if errors.Is(err, ErrPackExists) {
		// The pack name is deterministic per participant: an occupied
		// name after a partial failure means a previous attempt already
		// registered it. Recover the link instead of failing.
		url, populated, verr := p.generator.VerifyPack(task.chatID)
		if verr == nil && populated {
			log.Printf("[generation] job %d recovered existing pack for chat %d", task.jobID, task.chatID)
			return url, "", nil
		}
		return "", "", err
	}
	if err != nil {
		return "", "", err
	}
	return packURL, fileID, nil
}

func (p *GenerationPipeline) markCompleted(task generationTask, packURL, fileID string) {
	p.mu.Lock()
	job, err := p.store.JobByParticipant(task.participantID)
	if err == nil && job != nil && job.ID == task.jobID {
		job.Status = models.JobStatusOK
		job.PackURL = packURL
		job.FileID = fileID
		err = p.store.SaveJob(job)
	}
	p.mu.Unlock()
	if err != nil {
		log.Printf("[generation] persist result for job %d: %v", task.jobID, err)
	}
	p.notifier.NotifyPackReady(task.chatID, packURL)
}

func (p *GenerationPipeline) markFailed(task generationTask) {
	p.mu.Lock()
	job, err := p.store.JobByParticipant(task.participantID)
	if err == nil && job != nil && job.ID == task.jobID {
		job.Status = models.JobStatusFailed
		err = p.store.SaveJob(job)
	}
	p.mu.Unlock()
	if err != nil {
		log.Printf("[generation] persist failure for job %d: %v", task.jobID, err)
	}
	if p.errCount != nil {
		p.errCount.IncrementCounter("ERROR_COUNT_24H")
	}
	p.notifier.NotifyPackFailed(task.chatID)
}
