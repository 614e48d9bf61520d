package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// ClassFilter describes the supported class list filters. Free-form filter
// maps are deliberately not supported; every knob is typed.
type ClassFilter struct {
	Search    string
	Status    models.ClassStatus
	Level     models.ClassLevel
	TeacherID uint
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ClassRepository defines persistence operations for classes.
type ClassRepository interface {
	ListWithFilter(ctx context.Context, filter ClassFilter) ([]models.Class, int64, error)
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByInviteCode(ctx context.Context, code string, statuses ...models.ClassStatus) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id uint) error
	CompleteWithEnrollments(ctx context.Context, class *models.Class) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) ListWithFilter(ctx context.Context, filter ClassFilter) ([]models.Class, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.TeacherID != 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeClassSort(filter.SortBy, filter.SortOrder))

	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var classes []models.Class
	if err := query.Find(&classes).Error; err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) GetByInviteCode(ctx context.Context, code string, statuses ...models.ClassStatus) (models.Class, error) {
	query := r.db.WithContext(ctx).Where("invite_code = ?", code)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var class models.Class
	if err := query.First(&class).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Class{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompleteWithEnrollments marks the class completed and cascades every active
// enrollment to completed inside a single transaction.
func (r *classRepository) CompleteWithEnrollments(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class.Status = models.ClassStatusCompleted
		if err := tx.Save(class).Error; err != nil {
			return err
		}

		return tx.Model(&models.Enrollment{}).
			Where("class_id = ? AND status = ?", class.ID, models.EnrollmentStatusActive).
			Updates(map[string]interface{}{
				"status":     models.EnrollmentStatusCompleted,
				"updated_at": time.Now(),
			}).Error
	})
}

func normalizeClassSort(sortBy, sortOrder string) string {
	column := "created_at"
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "name":
		column = "name"
	case "level":
		column = "level"
	case "start_date":
		column = "start_date"
	case "status":
		column = "status"
	case "created_at", "":
	default:
	}

	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "asc") {
		direction = "ASC"
	}

	return column + " " + direction
}
