package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// AttendanceEntryRequest records one student's status for a session date.
type AttendanceEntryRequest struct {
	StudentID uint   `json:"student_id" validate:"required,min=1"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Note      string `json:"note" validate:"omitempty,max=255"`
}

// AttendanceBatchRequest records attendance for a whole session in one call.
// Re-submitting the same date overwrites the previous statuses.
type AttendanceBatchRequest struct {
	Date    string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []AttendanceEntryRequest `json:"entries" validate:"required,min=1,max=100,dive"`
}

// AttendanceResponse is the serialized representation returned to API clients.
type AttendanceResponse struct {
	ID          uint      `json:"id"`
	ClassID     uint      `json:"class_id"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Date        string    `json:"date"`
	Status      string    `json:"status"`
	Note        string    `json:"note"`
	RecordedBy  uint      `json:"recorded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAttendanceResponse converts a model into a DTO.
func NewAttendanceResponse(model models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          model.ID,
		ClassID:     model.ClassID,
		StudentID:   model.StudentID,
		StudentName: model.Student.Name,
		Date:        model.Date.Format("2006-01-02"),
		Status:      string(model.Status),
		Note:        model.Note,
		RecordedBy:  model.RecordedBy,
		CreatedAt:   model.CreatedAt,
	}
}

// NewAttendanceResponseSlice converts a slice of models into DTOs.
func NewAttendanceResponseSlice(records []models.Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}

	return responses
}
