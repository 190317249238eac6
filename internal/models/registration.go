package models

import "time"

type Registration struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID uint      `gorm:"not null;index;uniqueIndex:uq_registration" json:"participant_id"`
	ActivityType  string    `gorm:"size:50;not null;uniqueIndex:uq_registration" json:"activity_type"`
	Day           string    `gorm:"size:20;not null;uniqueIndex:uq_registration" json:"day"`
	TimeSlot      string    `gorm:"size:10;not null;uniqueIndex:uq_registration" json:"time_slot"`
	CreatedAt     time.Time `json:"created_at"`
}
