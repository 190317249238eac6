package services

import (
	"errors"
	"log"
	"time"

	"festival-bot-backend/internal/models"
)

var ErrScheduledInPast = errors.New("scheduled time is in the past")

// BroadcastStore is the persistence surface for scheduled messages.
type BroadcastStore interface {
	DueBroadcasts(now time.Time) ([]models.ScheduledMessage, error)
	MarkBroadcastSent(id uint) error
	AudienceChatIDs(audience string) ([]int64, error)
}

// BroadcastSender is the outbound side used for due deliveries.
type BroadcastSender interface {
	SendText(chatID int64, text string) error
}

// BroadcastService delivers admin broadcasts when they come due. The
// sweep runs on its own ticker and takes no locks shared with the event
// path.
type BroadcastService struct {
	store  BroadcastStore
	sender BroadcastSender
	now    func() time.Time
}

func NewBroadcastService(store BroadcastStore, sender BroadcastSender) *BroadcastService {
	return &BroadcastService{store: store, sender: sender, now: time.Now}
}

// DeliverDue sends every unsent message whose scheduled time has passed
// to its audience and marks it sent. Send failures for individual chats
// are logged and skipped; the message still counts as sent.
func (s *BroadcastService) DeliverDue() error {
	due, err := s.store.DueBroadcasts(s.now())
	if err != nil {
		return err
	}

	for _, msg := range due {
		chatIDs, err := s.store.AudienceChatIDs(msg.Audience)
		if err != nil {
			log.Printf("[broadcast] audience %q for message %d: %v", msg.Audience, msg.ID, err)
			continue
		}
		for _, chatID := range chatIDs {
			if err := s.sender.SendText(chatID, msg.MessageText); err != nil {
				log.Printf("[broadcast] send to %d: %v", chatID, err)
			}
		}
		if err := s.store.MarkBroadcastSent(msg.ID); err != nil {
			log.Printf("[broadcast] mark sent %d: %v", msg.ID, err)
		}
	}
	return nil
}

// RunSweeper polls for due messages until stopCh closes.
func (s *BroadcastService) RunSweeper(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := s.DeliverDue(); err != nil {
				log.Printf("[broadcast] sweep: %v", err)
			}
		}
	}
}
