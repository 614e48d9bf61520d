package models

import (
	"time"

	"gorm.io/datatypes"
)

// Schedule describes a recurring or one-off class session.
type Schedule struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ClassID    uint           `gorm:"not null;index" json:"class_id"`
	Topic      string         `gorm:"size:255;not null" json:"topic"`
	Weekday    time.Weekday   `gorm:"not null" json:"weekday"`
	StartsAt   string         `gorm:"size:8;not null" json:"starts_at"`
	EndsAt     string         `gorm:"size:8;not null" json:"ends_at"`
	Room       string         `gorm:"size:128" json:"room"`
	MeetingURL string         `gorm:"size:512" json:"meeting_url"`
	Items      datatypes.JSON `gorm:"type:json" json:"items"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Class      Class          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
