package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// StatusCount pairs a status value with its row count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// LevelCount pairs a level value with its row count.
type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

// ReportRepository exposes the read-only aggregation queries backing the
// admin dashboard.
type ReportRepository interface {
	CountClassesByStatus(ctx context.Context) ([]StatusCount, error)
	CountClassesByLevel(ctx context.Context) ([]LevelCount, error)
	CountEnrollmentsByStatus(ctx context.Context) ([]StatusCount, error)
	CountStudents(ctx context.Context) (int64, error)
	ActiveEnrollmentProgress(ctx context.Context) (sum float64, count int64, err error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository instantiates a GORM-backed repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountClassesByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Class{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountClassesByLevel(ctx context.Context) ([]LevelCount, error) {
	var rows []LevelCount
	err := r.db.WithContext(ctx).Model(&models.Class{}).
		Select("level, COUNT(*) AS count").
		Group("level").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountEnrollmentsByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}

func (r *reportRepository) ActiveEnrollmentProgress(ctx context.Context) (float64, int64, error) {
	type row struct {
		Sum   float64
		Count int64
	}
	var result row
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("COALESCE(SUM(progress), 0) AS sum, COUNT(*) AS count").
		Where("status = ?", models.EnrollmentStatusActive).
		Scan(&result).Error
	return result.Sum, result.Count, err
}
