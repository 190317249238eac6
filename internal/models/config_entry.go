package models

import "time"

type ConfigEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	ValueType string    `gorm:"size:20;not null;default:'text'" json:"value_type"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ConfigTypeText = "text"
	ConfigTypeInt  = "int"
	ConfigTypeBool = "bool"
	ConfigTypeJSON = "json"
)
