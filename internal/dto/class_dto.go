package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// ScheduleItemRequest is a nested session definition accepted on class creation.
type ScheduleItemRequest struct {
	Topic    string `json:"topic" validate:"required,min=3"`
	Weekday  int    `json:"weekday" validate:"min=0,max=6"`
	StartsAt string `json:"starts_at" validate:"required"`
	EndsAt   string `json:"ends_at" validate:"required"`
	Room     string `json:"room"`
}

// ClassCreateRequest describes the payload for creating a class. The schedule
// block is optional; when present each item becomes a Schedule row.
type ClassCreateRequest struct {
	Name        string                `json:"name" validate:"required,min=3"`
	Description string                `json:"description"`
	Level       string                `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1"`
	StartDate   *string               `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string               `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MaxStudents int                   `json:"max_students" validate:"omitempty,min=1,max=200"`
	Schedule    []ScheduleItemRequest `json:"schedule" validate:"omitempty,dive"`
}

// ClassUpdateRequest describes the payload for updating a class.
type ClassUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3"`
	Description *string `json:"description"`
	Level       *string `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1"`
	StartDate   *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,min=1,max=200"`
}

// ClassResponse is the serialized representation returned to API clients.
type ClassResponse struct {
	ID          uint       `json:"id"`
	TeacherID   uint       `json:"teacher_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Level       string     `json:"level"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxStudents int        `json:"max_students"`
	InviteCode  string     `json:"invite_code,omitempty"`
	Status      string     `json:"status"`
	Enrolled    int64      `json:"enrolled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClassPreviewResponse is the reduced view students see before joining.
// The invite code itself is never echoed back on this path.
type ClassPreviewResponse struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Level       string     `json:"level"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	SeatsLeft   int64      `json:"seats_left"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class, enrolled int64) ClassResponse {
	return ClassResponse{
		ID:          model.ID,
		TeacherID:   model.TeacherID,
		Name:        model.Name,
		Description: model.Description,
		Level:       string(model.Level),
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		MaxStudents: model.MaxStudents,
		InviteCode:  model.InviteCode,
		Status:      string(model.Status),
		Enrolled:    enrolled,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewClassPreviewResponse converts a model into the pre-join view.
func NewClassPreviewResponse(model models.Class, seats int64) ClassPreviewResponse {
	left := int64(model.MaxStudents) - seats
	if left < 0 {
		left = 0
	}
	return ClassPreviewResponse{
		Name:        model.Name,
		Description: model.Description,
		Level:       string(model.Level),
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		SeatsLeft:   left,
	}
}
