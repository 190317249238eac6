package services

import (
	"festival-bot-backend/internal/models"

	"gorm.io/gorm"
)

// AdminQueryService serves the paginated listings and drill-downs the
// admin panel reads. Writes still go through ParticipantService.
type AdminQueryService struct {
	db *gorm.DB
}

func NewAdminQueryService(db *gorm.DB) *AdminQueryService {
	return &AdminQueryService{db: db}
}

type ParticipantFilter struct {
	Search            string
	SurveyCompleted   *bool
	VacancyInterested *bool
	QuestCompleted    *bool
	Page              int
	PerPage           int
}

type ParticipantPage struct {
	Items   []models.Participant `json:"items"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

func (s *AdminQueryService) ListParticipants(f ParticipantFilter) (*ParticipantPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 200 {
		f.PerPage = 50
	}

	q := s.db.Model(&models.Participant{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("username ILIKE ? OR full_name ILIKE ? OR city ILIKE ?", like, like, like)
	}
	if f.SurveyCompleted != nil {
		q = q.Where("survey_completed = ?", *f.SurveyCompleted)
	}
	if f.VacancyInterested != nil {
		q = q.Where("interested_in_vacancies = ?", *f.VacancyInterested)
	}
	if f.QuestCompleted != nil {
		q = q.Where("id IN (?)", s.db.Model(&models.QuestProgress{}).
			Select("participant_id").
			Where("completed = ?", *f.QuestCompleted))
	}

	page := &ParticipantPage{Page: f.Page, PerPage: f.PerPage}
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}

type ParticipantDetail struct {
	Participant   models.Participant    `json:"participant"`
	Registrations []models.Registration `json:"registrations"`
	SurveyAnswers []models.SurveyAnswer `json:"survey_answers"`
	QuestProgress *models.QuestProgress `json:"quest_progress,omitempty"`
	GenerationJob *models.GenerationJob `json:"generation_job,omitempty"`
}

func (s *AdminQueryService) ParticipantDetail(id uint) (*ParticipantDetail, error) {
	var detail ParticipantDetail
	if err := s.db.First(&detail.Participant, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("participant_id = ?", id).Find(&detail.Registrations).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("participant_id = ?", id).Order("step_num").Find(&detail.SurveyAnswers).Error; err != nil {
		return nil, err
	}

	var qp models.QuestProgress
	err := s.db.Where("participant_id = ?", id).First(&qp).Error
	if err == nil {
		detail.QuestProgress = &qp
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var job models.GenerationJob
	err = s.db.Where("participant_id = ?", id).Order("created_at DESC").First(&job).Error
	if err == nil {
		detail.GenerationJob = &job
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return &detail, nil
}

// SlotRow pairs a slot definition with its current occupants.
type SlotRow struct {
	Slot    models.SlotDefinition `json:"slot"`
	Count   int                   `json:"count"`
	Members []models.Participant  `json:"members"`
}

func (s *AdminQueryService) ListSlots(activityType string) ([]SlotRow, error) {
	q := s.db.Model(&models.SlotDefinition{})
	if activityType != "" {
		q = q.Where("activity_type = ?", activityType)
	}
	var slots []models.SlotDefinition
	if err := q.Order("day, time_slot").Find(&slots).Error; err != nil {
		return nil, err
	}

	rows := make([]SlotRow, 0, len(slots))
	for _, slot := range slots {
		var members []models.Participant
		if err := s.db.
			Joins("JOIN registrations ON registrations.participant_id = participants.id").
			Where("registrations.activity_type = ? AND registrations.day = ? AND registrations.time_slot = ?",
				slot.ActivityType, slot.Day, slot.TimeSlot).
			Find(&members).Error; err != nil {
			return nil, err
		}
		rows = append(rows, SlotRow{Slot: slot, Count: len(members), Members: members})
	}
	return rows, nil
}

func (s *AdminQueryService) CreateSlot(slot *models.SlotDefinition) error {
	return s.db.Create(slot).Error
}

func (s *AdminQueryService) UpdateSlot(slot *models.SlotDefinition) error {
	return s.db.Save(slot).Error
}

func (s *AdminQueryService) SlotByID(id uint) (*models.SlotDefinition, error) {
	var slot models.SlotDefinition
	if err := s.db.First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *AdminQueryService) DeleteSlot(id uint) error {
	return s.db.Delete(&models.SlotDefinition{}, id).Error
}

func (s *AdminQueryService) ListBroadcasts() ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	if err := s.db.Order("scheduled_time DESC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *AdminQueryService) CreateBroadcast(m *models.ScheduledMessage) error {
	return s.db.Create(m).Error
}

func (s *AdminQueryService) BroadcastByID(id uint) (*models.ScheduledMessage, error) {
	var m models.ScheduledMessage
	if err := s.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *AdminQueryService) UpdateBroadcast(m *models.ScheduledMessage) error {
	return s.db.Save(m).Error
}

func (s *AdminQueryService) DeleteBroadcast(id uint) error {
	return s.db.Delete(&models.ScheduledMessage{}, id).Error
}

// LogAction records an admin mutation in the audit trail.
func (s *AdminQueryService) LogAction(adminID uint, action string, targetParticipantID uint, details string) {
	entry := models.AdminLog{
		AdminID:             adminID,
		Action:              action,
		TargetParticipantID: targetParticipantID,
		Details:             details,
	}
	s.db.Create(&entry)
}

func (s *AdminQueryService) RecentLogs(limit int) ([]models.AdminLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var logs []models.AdminLog
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
