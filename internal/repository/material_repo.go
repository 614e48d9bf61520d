package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// MaterialFilter describes material list filters.
type MaterialFilter struct {
	Search string
	Page   int
	Limit  int
}

// MaterialRepository defines persistence operations for study materials.
type MaterialRepository interface {
	ListByClass(ctx context.Context, classID uint, filter MaterialFilter) ([]models.Material, int64, error)
	GetByID(ctx context.Context, id uint) (models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id uint) error
	IncrementDownloads(ctx context.Context, id uint) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository instantiates a GORM-backed repository.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) ListByClass(ctx context.Context, classID uint, filter MaterialFilter) ([]models.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Material{}).Where("class_id = ?", classID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ?", pattern)
	}

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

	var materials []models.Material
	if err := query.Order("created_at DESC").Find(&materials).Error; err != nil {
		return nil, 0, err
	}

	return materials, total, nil
}

func (r *materialRepository) GetByID(ctx context.Context, id uint) (models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, id).Error; err != nil {
		return models.Material{}, err
	}
	return material, nil
}

func (r *materialRepository) Create(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) Update(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *materialRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Material{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementDownloads bumps the counter atomically in the database rather than
// read-modify-write in the application.
func (r *materialRepository) IncrementDownloads(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Material{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
