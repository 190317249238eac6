package models

import "time"

type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type AdminLog struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	AdminID             uint      `gorm:"not null;index" json:"admin_id"`
	Action              string    `gorm:"size:100;not null" json:"action"`
	TargetParticipantID uint      `json:"target_participant_id,omitempty"`
	Details             string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
