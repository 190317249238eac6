package models

import "time"

type SurveyAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID uint      `gorm:"not null;index" json:"participant_id"`
	StepNum       int       `gorm:"not null" json:"step_num"`
	AnswerText    string    `gorm:"type:text;not null" json:"answer_text"`
	CreatedAt     time.Time `json:"created_at"`
}
