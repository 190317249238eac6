package models

import "time"

type GenerationJob struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID uint      `gorm:"not null;index" json:"participant_id"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	PackName      string    `gorm:"size:255" json:"pack_name,omitempty"`
	PackURL       string    `gorm:"size:255" json:"pack_url,omitempty"`
	FileID        string    `gorm:"size:255" json:"file_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	JobStatusNone    = "none"
	JobStatusPending = "pending"
	JobStatusOK      = "ok"
	JobStatusFailed  = "failed"
)
