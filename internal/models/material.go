package models

import "time"

// Material is a study resource shared with a class.
type Material struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ClassID       uint      `gorm:"not null;index" json:"class_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	FileURL       string    `gorm:"size:512" json:"file_url"`
	FileSize      int64     `json:"file_size"`
	ContentType   string    `gorm:"size:128" json:"content_type"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
	UploadedBy    uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Class         Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
