package models

import "time"

// CompletedSteps holds a JSON array of step numbers, sorted ascending.
type QuestProgress struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ParticipantID  uint       `gorm:"not null;uniqueIndex" json:"participant_id"`
	CompletedSteps string     `gorm:"type:text;not null;default:'[]'" json:"completed_steps"`
	Completed      bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
