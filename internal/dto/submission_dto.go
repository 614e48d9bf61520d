package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// SubmissionCreateRequest describes the payload for a student submitting work.
type SubmissionCreateRequest struct {
	Answers json.RawMessage `json:"answers"`
	FileURL string          `json:"file_url" validate:"omitempty,url"`
}

// GradeRequest describes the payload for grading a submission.
type GradeRequest struct {
	Grade    float64 `json:"grade" validate:"min=0"`
	Feedback string  `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	StudentID    uint            `json:"student_id"`
	StudentName  string          `json:"student_name,omitempty"`
	Answers      json.RawMessage `json:"answers,omitempty"`
	FileURL      string          `json:"file_url"`
	Status       string          `json:"status"`
	Grade        *float64        `json:"grade"`
	Feedback     string          `json:"feedback"`
	GradedBy     *uint           `json:"graded_by"`
	GradedAt     *time.Time      `json:"graded_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		StudentName:  model.Student.Name,
		Answers:      json.RawMessage(model.Answers),
		FileURL:      model.FileURL,
		Status:       string(model.Status),
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
