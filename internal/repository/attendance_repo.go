package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// AttendanceFilter describes attendance list filters.
type AttendanceFilter struct {
	StudentID uint
	Date      *time.Time
	Page      int
	Limit     int
}

// AttendanceRepository defines persistence operations for attendance records.
type AttendanceRepository interface {
	ListByClass(ctx context.Context, classID uint, filter AttendanceFilter) ([]models.Attendance, int64, error)
	UpsertBatch(ctx context.Context, records []models.Attendance) (int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates a GORM-backed repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListByClass(ctx context.Context, classID uint, filter AttendanceFilter) ([]models.Attendance, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Attendance{}).Where("class_id = ?", classID)
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.Truncate(24*time.Hour))
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

	var records []models.Attendance
	if err := query.Preload("Student").Order("date DESC, student_id ASC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpsertBatch records attendance for a session; re-submitting the same
// (class, student, date) overwrites the previous status.
func (r *attendanceRepository) UpsertBatch(ctx context.Context, records []models.Attendance) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "recorded_by", "updated_at"}),
	})

	result := tx.Create(&records)
	return result.RowsAffected, result.Error
}
