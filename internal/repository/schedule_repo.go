package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// ScheduleRepository defines persistence operations for class sessions.
type ScheduleRepository interface {
	ListByClass(ctx context.Context, classID uint) ([]models.Schedule, error)
	GetByID(ctx context.Context, id uint) (models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id uint) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository instantiates a GORM-backed repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) ListByClass(ctx context.Context, classID uint) ([]models.Schedule, error) {
	var schedules []models.Schedule
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("weekday ASC, starts_at ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id uint) (models.Schedule, error) {
	var schedule models.Schedule
	if err := r.db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return models.Schedule{}, err
	}
	return schedule, nil
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Schedule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
