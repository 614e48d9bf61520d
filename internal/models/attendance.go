package models

import "time"

// AttendanceStatus enumerates per-session attendance outcomes.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Attendance records a student's presence for a class session date.
type Attendance struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	ClassID    uint             `gorm:"not null;uniqueIndex:idx_class_student_date" json:"class_id"`
	StudentID  uint             `gorm:"not null;uniqueIndex:idx_class_student_date" json:"student_id"`
	Date       time.Time        `gorm:"not null;uniqueIndex:idx_class_student_date" json:"date"`
	Status     AttendanceStatus `gorm:"size:16;not null" json:"status"`
	Note       string           `gorm:"size:255" json:"note"`
	RecordedBy uint             `gorm:"not null" json:"recorded_by"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Class      Class            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student    Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ValidAttendanceStatus reports whether the supplied status is recognised.
func ValidAttendanceStatus(status AttendanceStatus) bool {
	switch status {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}
