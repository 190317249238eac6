package services

import (
	"sync"
	"testing"

	"festival-bot-backend/internal/models"
)

type stubBookingStore struct {
	mu    sync.Mutex
	slots []models.SlotDefinition
	regs  []models.Registration
}

func (s *stubBookingStore) ActiveSlots(activityType string) ([]models.SlotDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SlotDefinition
	for _, slot := range s.slots {
		if slot.ActivityType == activityType && slot.Active {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *stubBookingStore) SlotDefinition(activityType, day, timeSlot string) (*models.SlotDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.ActivityType == activityType && slot.Day == day && slot.TimeSlot == timeSlot {
			cp := slot
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubBookingStore) HasRegistration(participantID uint, activityType, day, timeSlot string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.ParticipantID == participantID && r.ActivityType == activityType && r.Day == day && r.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubBookingStore) CountRegistrations(activityType, day, timeSlot string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.regs {
		if r.ActivityType == activityType && r.Day == day && r.TimeSlot == timeSlot {
			count++
		}
	}
	return count, nil
}

func (s *stubBookingStore) CreateRegistration(r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, *r)
	return nil
}

func danceSlot(day, timeSlot string, capacity int) models.SlotDefinition {
	return models.SlotDefinition{ActivityType: "dance", Day: day, TimeSlot: timeSlot, MaxCapacity: capacity, Active: true}
}

func TestReserveDuplicate(t *testing.T) {
	store := &stubBookingStore{slots: []models.SlotDefinition{danceSlot("saturday", "14:00", 5)}}
	svc := NewSlotBookingService(store, "dance")

	outcome, err := svc.Reserve(1, "saturday", "14:00")
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if outcome != Reserved {
		t.Fatalf("first reserve outcome = %v, want Reserved", outcome)
	}

	outcome, err = svc.Reserve(1, "saturday", "14:00")
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if outcome != AlreadyReserved {
		t.Fatalf("second reserve outcome = %v, want AlreadyReserved", outcome)
	}

	count, _ := store.CountRegistrations("dance", "saturday", "14:00")
	if count != 1 {
		t.Fatalf("registrations = %d, want 1", count)
	}
}

func TestReserveUnknownSlot(t *testing.T) {
	store := &stubBookingStore{slots: []models.SlotDefinition{danceSlot("saturday", "14:00", 5)}}
	svc := NewSlotBookingService(store, "dance")

	_, err := svc.Reserve(1, "sunday", "09:00")
	if _, ok := err.(ErrUnknownSlot); !ok {
		t.Fatalf("err = %v, want ErrUnknownSlot", err)
	}
}

func TestReserveInactiveSlot(t *testing.T) {
	slot := danceSlot("saturday", "14:00", 5)
	slot.Active = false
	store := &stubBookingStore{slots: []models.SlotDefinition{slot}}
	svc := NewSlotBookingService(store, "dance")

	_, err := svc.Reserve(1, "saturday", "14:00")
	if _, ok := err.(ErrUnknownSlot); !ok {
		t.Fatalf("err = %v, want ErrUnknownSlot", err)
	}
}

func TestReserveCapacityNeverExceeded(t *testing.T) {
	const capacity = 3
	store := &stubBookingStore{slots: []models.SlotDefinition{danceSlot("saturday", "14:00", capacity)}}
	svc := NewSlotBookingService(store, "dance")

	reserved := 0
	full := 0
	for i := 1; i <= 10; i++ {
		outcome, err := svc.Reserve(uint(i), "saturday", "14:00")
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		switch outcome {
		case Reserved:
			reserved++
		case SlotFull:
			full++
		}
	}

	if reserved != capacity {
		t.Fatalf("reserved = %d, want %d", reserved, capacity)
	}
	if full != 10-capacity {
		t.Fatalf("full = %d, want %d", full, 10-capacity)
	}
}

func TestReserveConcurrentLastSeat(t *testing.T) {
	store := &stubBookingStore{slots: []models.SlotDefinition{danceSlot("saturday", "14:00", 1)}}
	svc := NewSlotBookingService(store, "dance")

	const goroutines = 10
	outcomes := make([]ReserveOutcome, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := svc.Reserve(uint(i+1), "saturday", "14:00")
			if err != nil {
				t.Errorf("reserve %d: %v", i, err)
				return
			}
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	reserved := 0
	for _, o := range outcomes {
		if o == Reserved {
			reserved++
		}
	}
	if reserved != 1 {
		t.Fatalf("reserved = %d, want exactly 1", reserved)
	}
	count, _ := store.CountRegistrations("dance", "saturday", "14:00")
	if count != 1 {
		t.Fatalf("registrations = %d, want 1", count)
	}
}

func TestListOccupancy(t *testing.T) {
	store := &stubBookingStore{slots: []models.SlotDefinition{
		danceSlot("saturday", "14:00", 2),
		danceSlot("saturday", "16:00", 2),
	}}
	svc := NewSlotBookingService(store, "dance")

	if _, err := svc.Reserve(1, "saturday", "14:00"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	occ, err := svc.ListOccupancy()
	if err != nil {
		t.Fatalf("list occupancy: %v", err)
	}
	if len(occ) != 2 {
		t.Fatalf("len(occ) = %d, want 2", len(occ))
	}
	for _, o := range occ {
		want := 0
		if o.Slot.TimeSlot == "14:00" {
			want = 1
		}
		if o.Count != want {
			t.Fatalf("slot %s count = %d, want %d", o.Slot.TimeSlot, o.Count, want)
		}
	}
}
