package services

import (
	"errors"

	"festival-bot-backend/internal/models"
)

var ErrParticipantNotFound = errors.New("participant not found")

// ParticipantStore is the persistence surface for attendee identities.
type ParticipantStore interface {
	ParticipantByTelegramID(telegramID int64) (*models.Participant, error)
	ParticipantByID(id uint) (*models.Participant, error)
	CreateParticipant(p *models.Participant) error
	SaveParticipant(p *models.Participant) error
	DeleteParticipant(participantID uint) error
	ResetParticipant(participantID uint) error
	AddSurveyAnswer(a *models.SurveyAnswer) error
}

type ParticipantService struct {
	store ParticipantStore
}

func NewParticipantService(store ParticipantStore) *ParticipantService {
	return &ParticipantService{store: store}
}

// GetOrCreate registers a participant on first contact.
func (s *ParticipantService) GetOrCreate(telegramID int64, username, firstName, lastName string) (*models.Participant, bool, error) {
	p, err := s.store.ParticipantByTelegramID(telegramID)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		return p, false, nil
	}

	p = &models.Participant{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}
	if err := s.store.CreateParticipant(p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *ParticipantService) GetByTelegramID(telegramID int64) (*models.Participant, error) {
	p, err := s.store.ParticipantByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *ParticipantService) Get(participantID uint) (*models.Participant, error) {
	p, err := s.store.ParticipantByID(participantID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *ParticipantService) GiveConsent(participantID uint) error {
	p, err := s.Get(participantID)
	if err != nil {
		return err
	}
	p.ConsentGiven = true
	return s.store.SaveParticipant(p)
}

// RecordSurveyAnswer persists one answered survey step and mirrors the
// profile steps onto the participant row so the admin panel can filter
// without joining answers.
func (s *ParticipantService) RecordSurveyAnswer(participantID uint, step int, answer string) error {
	if err := s.store.AddSurveyAnswer(&models.SurveyAnswer{
		ParticipantID: participantID,
		StepNum:       step,
		AnswerText:    answer,
	}); err != nil {
		return err
	}

	p, err := s.Get(participantID)
	if err != nil {
		return err
	}
	switch step {
	case 1:
		p.FullName = answer
	case 2:
		p.City = answer
	case 3:
		p.ProfessionalRole = answer
	case 4:
		p.Company = answer
	default:
		return nil
	}
	return s.store.SaveParticipant(p)
}

// CompleteSurvey flips the completion flag and the vacancy interest
// captured by the final survey step.
func (s *ParticipantService) CompleteSurvey(participantID uint, interestedInVacancies bool) error {
	p, err := s.Get(participantID)
	if err != nil {
		return err
	}
	p.SurveyCompleted = true
	p.InterestedInVacancies = interestedInVacancies
	return s.store.SaveParticipant(p)
}

// Delete removes the participant and all dependent rows.
func (s *ParticipantService) Delete(participantID uint) error {
	return s.store.DeleteParticipant(participantID)
}

// Reset clears activity (registrations, quest, jobs, survey answers and
// flags) but keeps the identity so the participant can start over.
func (s *ParticipantService) Reset(participantID uint) error {
	return s.store.ResetParticipant(participantID)
}
