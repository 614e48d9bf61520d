package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// EnrollRequest describes the payload for a teacher enrolling one student.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

// BulkEnrollRequest describes the payload for enrolling several students.
type BulkEnrollRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1,max=100,dive,min=1"`
}

// JoinRequest describes the payload for self-service join by invite code.
type JoinRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8"`
}

// EnrollmentUpdateRequest describes a manual correction by the owning teacher.
type EnrollmentUpdateRequest struct {
	Status   *string  `json:"status" validate:"omitempty,oneof=active inactive dropped completed"`
	Progress *float64 `json:"progress" validate:"omitempty,min=0,max=100"`
}

// EnrollmentResponse is the serialized representation returned to API clients.
type EnrollmentResponse struct {
	ID          uint       `json:"id"`
	ClassID     uint       `json:"class_id"`
	StudentID   uint       `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	JoinedAt    time.Time  `json:"joined_at"`
	DroppedAt   *time.Time `json:"dropped_at,omitempty"`
}

// StudentClassResponse combines the class card with the student's own
// enrollment. The invite code is never included on this view.
type StudentClassResponse struct {
	Class      ClassResponse      `json:"class"`
	Enrollment EnrollmentResponse `json:"enrollment"`
}

// BulkEnrollFailure reports a single failed id in a bulk enrollment.
type BulkEnrollFailure struct {
	StudentID uint   `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkEnrollResponse reports the partial-failure outcome of a bulk enrollment.
// The batch as a whole always succeeds; failures are listed per student.
type BulkEnrollResponse struct {
	Enrolled []EnrollmentResponse `json:"enrolled"`
	Failed   []BulkEnrollFailure  `json:"failed"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:          model.ID,
		ClassID:     model.ClassID,
		StudentID:   model.StudentID,
		StudentName: model.Student.Name,
		Status:      string(model.Status),
		Progress:    model.Progress,
		JoinedAt:    model.JoinedAt,
		DroppedAt:   model.DroppedAt,
	}
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
