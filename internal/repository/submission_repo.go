package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// SubmissionFilter describes submission list filters.
type SubmissionFilter struct {
	Status models.SubmissionStatus
	Page   int
	Limit  int
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint, filter SubmissionFilter) ([]models.Submission, int64, error)
	ListByClass(ctx context.Context, classID uint, filter SubmissionFilter) ([]models.Submission, int64, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).Where("assignment_id = ?", assignmentID)
	return r.list(query, filter)
}

func (r *submissionRepository) ListByClass(ctx context.Context, classID uint, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.class_id = ?", classID)
	return r.list(query, filter)
}

func (r *submissionRepository) list(query *gorm.DB, filter SubmissionFilter) ([]models.Submission, int64, error) {
	if filter.Status != "" {
		query = query.Where("submissions.status = ?", filter.Status)
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

	var submissions []models.Submission
	if err := query.Preload("Assignment").Preload("Student").
		Order("submissions.created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").Preload("Student").
		First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count, err
}
