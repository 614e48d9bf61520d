package models

import "time"

// EnrollmentStatus enumerates a student's standing within a class.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusInactive  EnrollmentStatus = "inactive"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a class. Rows are never deleted: removing a
// student flips the status to dropped, and re-enrolling reactivates the same
// row. The composite unique index keeps one row per (class, student) pair.
type Enrollment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ClassID   uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"class_id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"student_id"`
	Status    EnrollmentStatus `gorm:"size:16;not null;default:active" json:"status"`
	Progress  float64          `gorm:"not null;default:0" json:"progress"`
	JoinedAt  time.Time        `gorm:"not null" json:"joined_at"`
	DroppedAt *time.Time       `json:"dropped_at"`
	RemovedBy *uint            `json:"removed_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Class     Class            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	Student   Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// CountsTowardCapacity reports whether the enrollment occupies a seat.
// Dropped and completed enrollments free their seats.
func (e Enrollment) CountsTowardCapacity() bool {
	return e.Status == EnrollmentStatusActive || e.Status == EnrollmentStatusInactive
}

// ValidEnrollmentStatus reports whether the supplied status is recognised.
func ValidEnrollmentStatus(status EnrollmentStatus) bool {
	switch status {
	case EnrollmentStatusActive, EnrollmentStatusInactive, EnrollmentStatusDropped, EnrollmentStatusCompleted:
		return true
	default:
		return false
	}
}
