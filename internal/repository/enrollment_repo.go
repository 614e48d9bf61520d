package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// ErrCapacityExceeded is returned when an insert or reactivation would push a
// class past its seat limit. Writers lock the class row before counting, so
// concurrent joins serialize and cannot both pass the check.
var ErrCapacityExceeded = errors.New("class capacity exceeded")

// EnrollmentFilter describes enrollment list filters.
type EnrollmentFilter struct {
	Status models.EnrollmentStatus
	Page   int
	Limit  int
}

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	ListByClass(ctx context.Context, classID uint, filter EnrollmentFilter) ([]models.Enrollment, int64, error)
	ListByStudent(ctx context.Context, studentID uint, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error)
	GetByClassAndStudent(ctx context.Context, classID, studentID uint) (models.Enrollment, error)
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error
	ReactivateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	CountSeats(ctx context.Context, classID uint) (int64, error)
	CountActive(ctx context.Context, classID uint) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListByClass(ctx context.Context, classID uint, filter EnrollmentFilter) ([]models.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("class_id = ?", classID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var enrollments []models.Enrollment
	if err := query.Preload("Student").Order("joined_at ASC").Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var enrollments []models.Enrollment
	if err := query.Preload("Class").Order("joined_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) GetByClassAndStudent(ctx context.Context, classID, studentID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

// CreateWithCapacity inserts a new enrollment after re-checking the seat count
// inside the same transaction. The class row is locked FOR UPDATE first so two
// concurrent enrolls for different students cannot both read the old count;
// the composite unique index on (class_id, student_id) backstops concurrent
// duplicate inserts for the same student.
func (r *enrollmentRepository) CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockClassRow(tx, enrollment.ClassID); err != nil {
			return err
		}

		seats, err := countSeats(tx, enrollment.ClassID)
		if err != nil {
			return err
		}
		if capacity > 0 && seats >= int64(capacity) {
			return ErrCapacityExceeded
		}

		if enrollment.JoinedAt.IsZero() {
			enrollment.JoinedAt = time.Now().UTC()
		}
		return tx.Create(enrollment).Error
	})
}

// ReactivateWithCapacity flips a previously dropped enrollment back to active,
// locking the class row and re-checking capacity in the same transaction. The
// row keeps its identity.
func (r *enrollmentRepository) ReactivateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockClassRow(tx, enrollment.ClassID); err != nil {
			return err
		}

		seats, err := countSeats(tx, enrollment.ClassID)
		if err != nil {
			return err
		}
		if capacity > 0 && seats >= int64(capacity) {
			return ErrCapacityExceeded
		}

		enrollment.Status = models.EnrollmentStatusActive
		enrollment.DroppedAt = nil
		enrollment.RemovedBy = nil
		enrollment.JoinedAt = time.Now().UTC()
		return tx.Save(enrollment).Error
	})
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}

func (r *enrollmentRepository) CountSeats(ctx context.Context, classID uint) (int64, error) {
	return countSeats(r.db.WithContext(ctx), classID)
}

func (r *enrollmentRepository) CountActive(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("class_id = ? AND status = ?", classID, models.EnrollmentStatusActive).
		Count(&count).Error
	return count, err
}

// lockClassRow takes a FOR UPDATE lock on the class so capacity checks in
// concurrent transactions serialize. On sqlite the locking clause is a no-op
// and the single-writer model provides the same guarantee.
func lockClassRow(tx *gorm.DB, classID uint) error {
	var class models.Class
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, classID).Error
}

func countSeats(db *gorm.DB, classID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("class_id = ? AND status IN ?", classID,
			[]models.EnrollmentStatus{models.EnrollmentStatusActive, models.EnrollmentStatusInactive}).
		Count(&count).Error
	return count, err
}
