package database

import (
	"errors"
	"time"

	"festival-bot-backend/internal/models"

	"gorm.io/gorm"
)

// Store implements the persistence interfaces consumed by the services
// package on top of gorm. Not-found lookups return (nil, nil) so callers
// can distinguish absence from storage failure.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ─── participants ───

func (s *Store) ParticipantByTelegramID(telegramID int64) (*models.Participant, error) {
	var p models.Participant
	err := s.db.Where("telegram_id = ?", telegramID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ParticipantByID(id uint) (*models.Participant, error) {
	var p models.Participant
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateParticipant(p *models.Participant) error {
	return s.db.Create(p).Error
}

func (s *Store) SaveParticipant(p *models.Participant) error {
	return s.db.Save(p).Error
}

// DeleteParticipant removes the participant and everything tied to it.
func (s *Store) DeleteParticipant(participantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Registration{}, &models.QuestProgress{},
			&models.GenerationJob{}, &models.SurveyAnswer{},
		} {
			if err := tx.Where("participant_id = ?", participantID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Participant{}, participantID).Error
	})
}

// ResetParticipant clears activity but keeps the identity row.
func (s *Store) ResetParticipant(participantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Registration{}, &models.QuestProgress{},
			&models.GenerationJob{}, &models.SurveyAnswer{},
		} {
			if err := tx.Where("participant_id = ?", participantID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Participant{}).Where("id = ?", participantID).
			Updates(map[string]interface{}{
				"consent_given":           false,
				"survey_completed":        false,
				"interested_in_vacancies": false,
			}).Error
	})
}

func (s *Store) AddSurveyAnswer(a *models.SurveyAnswer) error {
	return s.db.Create(a).Error
}

// ─── slots and registrations ───

func (s *Store) ActiveSlots(activityType string) ([]models.SlotDefinition, error) {
	var slots []models.SlotDefinition
	err := s.db.Where("activity_type = ? AND active = ?", activityType, true).
		Order("day, time_slot").
		Find(&slots).Error
	return slots, err
}

func (s *Store) SlotDefinition(activityType, day, timeSlot string) (*models.SlotDefinition, error) {
	var slot models.SlotDefinition
	err := s.db.Where("activity_type = ? AND day = ? AND time_slot = ?", activityType, day, timeSlot).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *Store) HasRegistration(participantID uint, activityType, day, timeSlot string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Registration{}).
		Where("participant_id = ? AND activity_type = ? AND day = ? AND time_slot = ?",
			participantID, activityType, day, timeSlot).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CountRegistrations(activityType, day, timeSlot string) (int, error) {
	var count int64
	err := s.db.Model(&models.Registration{}).
		Where("activity_type = ? AND day = ? AND time_slot = ?", activityType, day, timeSlot).
		Count(&count).Error
	return int(count), err
}

func (s *Store) CreateRegistration(r *models.Registration) error {
	return s.db.Create(r).Error
}

// ─── quest ───

func (s *Store) QuestProgress(participantID uint) (*models.QuestProgress, error) {
	var p models.QuestProgress
	err := s.db.Where("participant_id = ?", participantID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveQuestProgress(p *models.QuestProgress) error {
	return s.db.Save(p).Error
}

// ─── generation jobs ───

func (s *Store) JobByParticipant(participantID uint) (*models.GenerationJob, error) {
	var j models.GenerationJob
	err := s.db.Where("participant_id = ?", participantID).
		Order("created_at DESC").
		First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) CreateJob(j *models.GenerationJob) error {
	return s.db.Create(j).Error
}

func (s *Store) SaveJob(j *models.GenerationJob) error {
	return s.db.Save(j).Error
}

func (s *Store) DeleteJob(id uint) error {
	return s.db.Delete(&models.GenerationJob{}, id).Error
}

// ─── config entries ───

func (s *Store) AllConfigEntries() ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	err := s.db.Find(&entries).Error
	return entries, err
}

func (s *Store) UpsertConfigEntry(e *models.ConfigEntry) error {
	var existing models.ConfigEntry
	err := s.db.Where("key = ?", e.Key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(e).Error
	}
	if err != nil {
		return err
	}
	existing.Value = e.Value
	existing.ValueType = e.ValueType
	return s.db.Save(&existing).Error
}

// ─── broadcasts ───

func (s *Store) DueBroadcasts(now time.Time) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	err := s.db.Where("scheduled_time <= ? AND sent = ?", now, false).Find(&msgs).Error
	return msgs, err
}

func (s *Store) MarkBroadcastSent(id uint) error {
	return s.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).
		Update("sent", true).Error
}

func (s *Store) AudienceChatIDs(audience string) ([]int64, error) {
	q := s.db.Model(&models.Participant{}).Where("consent_given = ?", true)
	switch audience {
	case models.AudienceVacancies:
		q = q.Where("interested_in_vacancies = ?", true)
	case models.AudienceQuestFinishers:
		q = q.Joins("JOIN quest_progresses ON quest_progresses.participant_id = participants.id").
			Where("quest_progresses.completed = ?", true)
	}
	var ids []int64
	err := q.Pluck("participants.telegram_id", &ids).Error
	return ids, err
}
