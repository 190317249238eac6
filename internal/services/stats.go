package services

import (
	"time"

	"festival-bot-backend/internal/models"

	"gorm.io/gorm"
)

// StatsService serves the read projections consumed by the admin
// dashboard: coarse totals, recent activity, and health. All queries are
// staleness-tolerant reads.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type DashboardStats struct {
	TotalParticipants    int64            `json:"total_participants"`
	NewParticipantsToday int64            `json:"new_participants_today"`
	VacancyInterested    int64            `json:"vacancy_interested"`
	SurveyCompleted      int64            `json:"survey_completed"`
	QuestCompleted       int64            `json:"quest_completed"`
	JobsByStatus         map[string]int64 `json:"jobs_by_status"`
	ErrorCount           int              `json:"error_count"`
}

func (s *StatsService) Dashboard(errCount *ConfigStore) (*DashboardStats, error) {
	stats := &DashboardStats{JobsByStatus: make(map[string]int64)}
	dayAgo := time.Now().Add(-24 * time.Hour)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalParticipants, s.db.Model(&models.Participant{})},
		{&stats.NewParticipantsToday, s.db.Model(&models.Participant{}).Where("created_at >= ?", dayAgo)},
		{&stats.VacancyInterested, s.db.Model(&models.Participant{}).Where("interested_in_vacancies = ?", true)},
		{&stats.SurveyCompleted, s.db.Model(&models.Participant{}).Where("survey_completed = ?", true)},
		{&stats.QuestCompleted, s.db.Model(&models.QuestProgress{}).Where("completed = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := s.db.Model(&models.GenerationJob{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, sc := range byStatus {
		stats.JobsByStatus[sc.Status] = sc.Count
	}

	if errCount != nil {
		stats.ErrorCount = errCount.Int("ERROR_COUNT_24H", 0)
	}
	return stats, nil
}

type QuestWinner struct {
	Participant models.Participant `json:"participant"`
	CompletedAt *time.Time         `json:"completed_at"`
}

func (s *StatsService) RecentQuestWinners(limit int) ([]QuestWinner, error) {
	var rows []models.QuestProgress
	if err := s.db.Where("completed = ?", true).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	winners := make([]QuestWinner, 0, len(rows))
	for _, row := range rows {
		var p models.Participant
		if err := s.db.First(&p, row.ParticipantID).Error; err != nil {
			continue
		}
		winners = append(winners, QuestWinner{Participant: p, CompletedAt: row.CompletedAt})
	}
	return winners, nil
}

type RecentJob struct {
	Job         models.GenerationJob `json:"job"`
	Participant models.Participant   `json:"participant"`
}

func (s *StatsService) RecentJobs(limit int) ([]RecentJob, error) {
	var jobs []models.GenerationJob
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}

	rows := make([]RecentJob, 0, len(jobs))
	for _, job := range jobs {
		var p models.Participant
		if err := s.db.First(&p, job.ParticipantID).Error; err != nil {
			continue
		}
		rows = append(rows, RecentJob{Job: job, Participant: p})
	}
	return rows, nil
}

// HealthCheck pings the database; the caller folds in transport state.
func (s *StatsService) HealthCheck() bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}
