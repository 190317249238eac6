package services

import (
	"errors"
	"testing"
	"time"

	"festival-bot-backend/internal/models"
)

type stubBroadcastStore struct {
	msgs      []models.ScheduledMessage
	audiences map[string][]int64
	sent      []uint
}

func (s *stubBroadcastStore) DueBroadcasts(now time.Time) ([]models.ScheduledMessage, error) {
	var due []models.ScheduledMessage
	for _, m := range s.msgs {
		if !m.Sent && !m.ScheduledTime.After(now) {
			due = append(due, m)
		}
	}
	return due, nil
}

func (s *stubBroadcastStore) MarkBroadcastSent(id uint) error {
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			s.msgs[i].Sent = true
		}
	}
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubBroadcastStore) AudienceChatIDs(audience string) ([]int64, error) {
	return s.audiences[audience], nil
}

type stubSender struct {
	sent    map[int64][]string
	failFor int64
}

func newStubSender() *stubSender {
	return &stubSender{sent: make(map[int64][]string)}
}

func (s *stubSender) SendText(chatID int64, text string) error {
	if chatID == s.failFor {
		return errors.New("chat blocked the bot")
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func TestDeliverDueSendsToAudience(t *testing.T) {
	now := time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)
	store := &stubBroadcastStore{
		msgs: []models.ScheduledMessage{
			{ID: 1, MessageText: "скоро начинаем", Audience: models.AudienceAll, ScheduledTime: now.Add(-time.Minute)},
			{ID: 2, MessageText: "позже", Audience: models.AudienceAll, ScheduledTime: now.Add(time.Hour)},
		},
		audiences: map[string][]int64{models.AudienceAll: {10, 20}},
	}
	sender := newStubSender()
	svc := NewBroadcastService(store, sender)
	svc.now = func() time.Time { return now }

	if err := svc.DeliverDue(); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if len(sender.sent[10]) != 1 || len(sender.sent[20]) != 1 {
		t.Fatalf("sent = %v, want one message per chat", sender.sent)
	}
	if len(store.sent) != 1 || store.sent[0] != 1 {
		t.Fatalf("marked sent = %v, want [1]", store.sent)
	}

	// The future message stays queued.
	if err := svc.DeliverDue(); err != nil {
		t.Fatalf("second deliver: %v", err)
	}
	if len(sender.sent[10]) != 1 {
		t.Fatalf("message delivered twice")
	}
}

func TestDeliverDueSkipsFailedChats(t *testing.T) {
	now := time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)
	store := &stubBroadcastStore{
		msgs: []models.ScheduledMessage{
			{ID: 1, MessageText: "привет", Audience: models.AudienceVacancies, ScheduledTime: now.Add(-time.Minute)},
		},
		audiences: map[string][]int64{models.AudienceVacancies: {10, 20, 30}},
	}
	sender := newStubSender()
	sender.failFor = 20
	svc := NewBroadcastService(store, sender)
	svc.now = func() time.Time { return now }

	if err := svc.DeliverDue(); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if len(sender.sent[10]) != 1 || len(sender.sent[30]) != 1 {
		t.Fatalf("healthy chats not delivered: %v", sender.sent)
	}
	// A per-chat failure must not keep the message in the queue.
	if len(store.sent) != 1 {
		t.Fatalf("message not marked sent after partial failure")
	}
}
