package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title       string  `form:"title" json:"title" validate:"required,min=3"`
	Description string  `form:"description" json:"description"`
	Skill       string  `form:"skill" json:"skill" validate:"omitempty,oneof=listening reading writing speaking"`
	DueDate     string  `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxScore    float64 `form:"max_score" json:"max_score" validate:"omitempty,min=1,max=1000"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string  `form:"title" json:"title" validate:"omitempty,min=3"`
	Description *string  `form:"description" json:"description"`
	Skill       *string  `form:"skill" json:"skill" validate:"omitempty,oneof=listening reading writing speaking"`
	DueDate     *string  `form:"due_date" json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MaxScore    *float64 `form:"max_score" json:"max_score" validate:"omitempty,min=1,max=1000"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID              uint      `json:"id"`
	ClassID         uint      `json:"class_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Skill           string    `json:"skill"`
	DueDate         time.Time `json:"due_date"`
	MaxScore        float64   `json:"max_score"`
	FileURL         string    `json:"file_url"`
	SubmissionCount int64     `json:"submission_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment, submissionCount int64) AssignmentResponse {
	return AssignmentResponse{
		ID:              model.ID,
		ClassID:         model.ClassID,
		Title:           model.Title,
		Description:     model.Description,
		Skill:           string(model.Skill),
		DueDate:         model.DueDate,
		MaxScore:        model.MaxScore,
		FileURL:         model.FileURL,
		SubmissionCount: submissionCount,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
