package models

import "time"

// AssignmentSkill enumerates the VSTEP skill an assignment exercises.
type AssignmentSkill string

const (
	AssignmentSkillListening AssignmentSkill = "listening"
	AssignmentSkillReading   AssignmentSkill = "reading"
	AssignmentSkillWriting   AssignmentSkill = "writing"
	AssignmentSkillSpeaking  AssignmentSkill = "speaking"
)

// Assignment represents graded work assigned to a class.
type Assignment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ClassID     uint            `gorm:"not null;index" json:"class_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Skill       AssignmentSkill `gorm:"size:16" json:"skill"`
	DueDate     time.Time       `gorm:"not null" json:"due_date"`
	MaxScore    float64         `gorm:"not null;default:100" json:"max_score"`
	FileURL     string          `gorm:"size:512" json:"file_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Class       Class           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions []Submission    `json:"submissions,omitempty"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
