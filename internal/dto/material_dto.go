package dto

import (
	"time"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// MaterialCreateRequest describes the payload for uploading a material.
type MaterialCreateRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=3"`
	Description string `form:"description" json:"description"`
}

// MaterialUpdateRequest describes the payload for updating a material.
type MaterialUpdateRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,min=3"`
	Description *string `form:"description" json:"description"`
}

// MaterialResponse is the serialized representation returned to API clients.
type MaterialResponse struct {
	ID            uint      `json:"id"`
	ClassID       uint      `json:"class_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FileURL       string    `json:"file_url"`
	FileSize      int64     `json:"file_size"`
	ContentType   string    `json:"content_type"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewMaterialResponse converts a model into a DTO.
func NewMaterialResponse(model models.Material) MaterialResponse {
	return MaterialResponse{
		ID:            model.ID,
		ClassID:       model.ClassID,
		Title:         model.Title,
		Description:   model.Description,
		FileURL:       model.FileURL,
		FileSize:      model.FileSize,
		ContentType:   model.ContentType,
		DownloadCount: model.DownloadCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewMaterialResponseSlice converts a slice of models into DTOs.
func NewMaterialResponseSlice(materials []models.Material) []MaterialResponse {
	responses := make([]MaterialResponse, 0, len(materials))
	for _, material := range materials {
		responses = append(responses, NewMaterialResponse(material))
	}

	return responses
}
