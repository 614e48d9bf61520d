package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// AnnouncementCreateRequest describes the payload for posting an announcement.
type AnnouncementCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3"`
	Body     string `json:"body" validate:"required,min=3"`
	IsPinned bool   `json:"is_pinned"`
}

// AnnouncementUpdateRequest describes the payload for editing an announcement.
type AnnouncementUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=3"`
	Body     *string `json:"body" validate:"omitempty,min=3"`
	IsPinned *bool   `json:"is_pinned"`
}

// AnnouncementResponse is the serialized representation returned to API clients.
type AnnouncementResponse struct {
	ID        uint      `json:"id"`
	ClassID   uint      `json:"class_id"`
	AuthorID  uint      `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnnouncementResponse converts a model into a DTO.
func NewAnnouncementResponse(model models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        model.ID,
		ClassID:   model.ClassID,
		AuthorID:  model.AuthorID,
		Title:     model.Title,
		Body:      model.Body,
		IsPinned:  model.IsPinned,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAnnouncementResponseSlice converts a slice of models into DTOs.
func NewAnnouncementResponseSlice(items []models.Announcement) []AnnouncementResponse {
	responses := make([]AnnouncementResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAnnouncementResponse(item))
	}

	return responses
}
