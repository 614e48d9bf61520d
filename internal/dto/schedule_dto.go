package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// ScheduleCreateRequest describes the payload for adding a class session.
type ScheduleCreateRequest struct {
	Topic      string   `json:"topic" validate:"required,min=3"`
	Weekday    int      `json:"weekday" validate:"min=0,max=6"`
	StartsAt   string   `json:"starts_at" validate:"required"`
	EndsAt     string   `json:"ends_at" validate:"required"`
	Room       string   `json:"room"`
	MeetingURL string   `json:"meeting_url" validate:"omitempty,url"`
	Items      []string `json:"items"`
}

// ScheduleUpdateRequest describes the payload for updating a class session.
type ScheduleUpdateRequest struct {
	Topic      *string  `json:"topic" validate:"omitempty,min=3"`
	Weekday    *int     `json:"weekday" validate:"omitempty,min=0,max=6"`
	StartsAt   *string  `json:"starts_at"`
	EndsAt     *string  `json:"ends_at"`
	Room       *string  `json:"room"`
	MeetingURL *string  `json:"meeting_url" validate:"omitempty,url"`
	Items      []string `json:"items"`
}

// ScheduleResponse is the serialized representation returned to API clients.
type ScheduleResponse struct {
	ID         uint      `json:"id"`
	ClassID    uint      `json:"class_id"`
	Topic      string    `json:"topic"`
	Weekday    int       `json:"weekday"`
	StartsAt   string    `json:"starts_at"`
	EndsAt     string    `json:"ends_at"`
	Room       string    `json:"room"`
	MeetingURL string    `json:"meeting_url"`
	Items      []string  `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewScheduleResponse converts a model into a DTO.
func NewScheduleResponse(model models.Schedule, items []string) ScheduleResponse {
	return ScheduleResponse{
		ID:         model.ID,
		ClassID:    model.ClassID,
		Topic:      model.Topic,
		Weekday:    int(model.Weekday),
		StartsAt:   model.StartsAt,
		EndsAt:     model.EndsAt,
		Room:       model.Room,
		MeetingURL: model.MeetingURL,
		Items:      items,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
