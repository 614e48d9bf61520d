package models

import "time"

// Announcement is a message posted to a class feed.
type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	IsPinned  bool      `gorm:"index" json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Class     Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
