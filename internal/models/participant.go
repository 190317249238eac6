package models

import "time"

type Participant struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TelegramID       int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username         string    `gorm:"size:100" json:"username,omitempty"`
	FirstName        string    `gorm:"size:100" json:"first_name,omitempty"`
	LastName         string    `gorm:"size:100" json:"last_name,omitempty"`
	FullName         string    `gorm:"size:200" json:"full_name,omitempty"`
	City             string    `gorm:"size:100" json:"city,omitempty"`
	ProfessionalRole string    `gorm:"size:100" json:"professional_role,omitempty"`
	Company          string    `gorm:"size:100" json:"company,omitempty"`

	ConsentGiven          bool `gorm:"not null;default:false" json:"consent_given"`
	SurveyCompleted       bool `gorm:"not null;default:false" json:"survey_completed"`
	InterestedInVacancies bool `gorm:"not null;default:false" json:"interested_in_vacancies"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
