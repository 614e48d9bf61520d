package models

import "time"

// ClassLevel is the VSTEP proficiency band a class targets.
type ClassLevel string

const (
	ClassLevelA1 ClassLevel = "A1"
	ClassLevelA2 ClassLevel = "A2"
	ClassLevelB1 ClassLevel = "B1"
	ClassLevelB2 ClassLevel = "B2"
	ClassLevelC1 ClassLevel = "C1"
)

// ClassStatus enumerates the lifecycle states of a class.
//
// Transitions: draft -> active -> completed -> archived. Draft classes may
// also be archived directly. No transition ever goes backwards.
type ClassStatus string

const (
	ClassStatusDraft     ClassStatus = "draft"
	ClassStatusActive    ClassStatus = "active"
	ClassStatusCompleted ClassStatus = "completed"
	ClassStatusArchived  ClassStatus = "archived"
)

// Class is a teaching group of students working toward one VSTEP level.
type Class struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Level       ClassLevel  `gorm:"size:8;not null" json:"level"`
	Status      ClassStatus `gorm:"size:16;not null;default:draft" json:"status"`
	TeacherID   uint        `gorm:"not null;index" json:"teacher_id"`
	InviteCode  string      `gorm:"size:16;uniqueIndex;not null" json:"invite_code,omitempty"`
	MaxStudents int         `gorm:"not null;default:30" json:"max_students"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsJoinable reports whether new enrollments are accepted for this class.
// Only active classes take students; draft classes are still being set up and
// completed or archived ones are closed for good.
func (c Class) IsJoinable() bool {
	return c.Status == ClassStatusActive
}

// ValidClassLevel reports whether the supplied level is recognised.
func ValidClassLevel(level ClassLevel) bool {
	switch level {
	case ClassLevelA1, ClassLevelA2, ClassLevelB1, ClassLevelB2, ClassLevelC1:
		return true
	default:
		return false
	}
}

// ValidClassStatus reports whether the supplied status is recognised.
func ValidClassStatus(status ClassStatus) bool {
	switch status {
	case ClassStatusDraft, ClassStatusActive, ClassStatusCompleted, ClassStatusArchived:
		return true
	default:
		return false
	}
}
