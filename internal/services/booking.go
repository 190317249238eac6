package services

import (
	"fmt"
	"sync"

	"festival-bot-backend/internal/models"
)

type ReserveOutcome int

const (
	Reserved ReserveOutcome = iota
	AlreadyReserved
	SlotFull
)

// ErrUnknownSlot reports a reservation attempt against a slot that is not
// defined or not active. Malformed input, not capacity.
type ErrUnknownSlot struct {
	Day, TimeSlot string
}

func (e ErrUnknownSlot) Error() string {
	return fmt.Sprintf("no active slot %s %s", e.Day, e.TimeSlot)
}

// BookingStore is the persistence surface for slots and registrations.
type BookingStore interface {
	ActiveSlots(activityType string) ([]models.SlotDefinition, error)
	SlotDefinition(activityType, day, timeSlot string) (*models.SlotDefinition, error)
	HasRegistration(participantID uint, activityType, day, timeSlot string) (bool, error)
	CountRegistrations(activityType, day, timeSlot string) (int, error)
	CreateRegistration(r *models.Registration) error
}

// SlotBookingService hands out capacity-bounded reservations. The
// check-then-insert sequence runs under a per-slot mutex so two callers
// racing for the last seat serialize; the unique index on
// (participant, activity, day, time_slot) is the storage-level backstop.
type SlotBookingService struct {
	store        BookingStore
	activityType string

	mu        sync.Mutex
	slotLocks map[string]*sync.Mutex
}

func NewSlotBookingService(store BookingStore, activityType string) *SlotBookingService {
	return &SlotBookingService{
		store:        store,
		activityType: activityType,
		slotLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *SlotBookingService) slotLock(day, timeSlot string) *sync.Mutex {
	key := day + "|" + timeSlot
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.slotLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.slotLocks[key] = l
	}
	return l
}

// Reserve books one seat. Duplicate requests for the same participant and
// slot are answered AlreadyReserved without a second insert; a full slot
// is answered SlotFull without ever exceeding capacity.
func (s *SlotBookingService) Reserve(participantID uint, day, timeSlot string) (ReserveOutcome, error) {
	slot, err := s.store.SlotDefinition(s.activityType, day, timeSlot)
	if err != nil {
		return 0, err
	}
	if slot == nil || !slot.Active {
		return 0, ErrUnknownSlot{Day: day, TimeSlot: timeSlot}
	}

	l := s.slotLock(day, timeSlot)
	l.Lock()
	defer l.Unlock()

	exists, err := s.store.HasRegistration(participantID, s.activityType, day, timeSlot)
	if err != nil {
		return 0, err
	}
	if exists {
		return AlreadyReserved, nil
	}

	count, err := s.store.CountRegistrations(s.activityType, day, timeSlot)
	if err != nil {
		return 0, err
	}
	if count >= slot.MaxCapacity {
		return SlotFull, nil
	}

	err = s.store.CreateRegistration(&models.Registration{
		ParticipantID: participantID,
		ActivityType:  s.activityType,
		Day:           day,
		TimeSlot:      timeSlot,
	})
	if err != nil {
		return 0, err
	}
	return Reserved, nil
}

type SlotOccupancy struct {
	Slot  models.SlotDefinition `json:"slot"`
	Count int                   `json:"count"`
}

// ListOccupancy is a read-only projection for slot pickers and the admin
// dashboard. It tolerates staleness: no slot locks are taken.
func (s *SlotBookingService) ListOccupancy() ([]SlotOccupancy, error) {
	slots, err := s.store.ActiveSlots(s.activityType)
	if err != nil {
		return nil, err
	}

	result := make([]SlotOccupancy, 0, len(slots))
	for _, slot := range slots {
		count, err := s.store.CountRegistrations(s.activityType, slot.Day, slot.TimeSlot)
		if err != nil {
			return nil, err
		}
		result = append(result, SlotOccupancy{Slot: slot, Count: count})
	}
	return result, nil
}
