package models

import "time"

// Student represents a learner preparing for the VSTEP exam.
type Student struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	TargetLevel ClassLevel `gorm:"size:8" json:"target_level"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
