package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus enumerates the grading pipeline states.
type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "pending"
	SubmissionStatusGrading SubmissionStatus = "grading"
	SubmissionStatusGraded  SubmissionStatus = "graded"
)

// Submission represents a student's answer set for an assignment.
type Submission struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssignmentID uint             `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint             `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Answers      datatypes.JSON   `gorm:"type:json" json:"answers"`
	FileURL      string           `gorm:"size:512" json:"file_url"`
	Status       SubmissionStatus `gorm:"size:16;not null" json:"status"`
	Grade        *float64         `json:"grade"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	GradedBy     *uint            `json:"graded_by"`
	GradedAt     *time.Time       `json:"graded_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Assignment   Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
