package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// AnnouncementFilter filters announcement list queries.
type AnnouncementFilter struct {
	Page  int
	Limit int
}

// AnnouncementRepository exposes persistence helpers for announcements.
type AnnouncementRepository interface {
	ListByClass(ctx context.Context, classID uint, filter AnnouncementFilter) ([]models.Announcement, int64, error)
	GetByID(ctx context.Context, id uint) (models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository constructs the repository implementation.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) ListByClass(ctx context.Context, classID uint, filter AnnouncementFilter) ([]models.Announcement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{}).Where("class_id = ?", classID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var items []models.Announcement
	if err := query.Order("is_pinned DESC, created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id uint) (models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.WithContext(ctx).First(&announcement, id).Error; err != nil {
		return models.Announcement{}, err
	}
	return announcement, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
