package models

import "time"

type SlotDefinition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActivityType string    `gorm:"size:50;not null;default:'dance';uniqueIndex:uq_slot" json:"activity_type"`
	Day          string    `gorm:"size:20;not null;uniqueIndex:uq_slot" json:"day"`
	TimeSlot     string    `gorm:"size:10;not null;uniqueIndex:uq_slot" json:"time_slot"`
	MaxCapacity  int       `gorm:"not null;default:20" json:"max_capacity"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
