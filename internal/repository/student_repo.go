package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}
