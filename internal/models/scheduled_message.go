package models

import "time"

type ScheduledMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MessageText   string    `gorm:"type:text;not null" json:"message_text"`
	Audience      string    `gorm:"size:30;not null;default:'all'" json:"audience"`
	ScheduledTime time.Time `gorm:"not null;index" json:"scheduled_time"`
	Sent          bool      `gorm:"not null;default:false" json:"sent"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	AudienceAll            = "all"
	AudienceVacancies      = "vacancies"
	AudienceQuestFinishers = "quest_finishers"
)
