package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment was not located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService encapsulates assignment management.
type AssignmentService interface {
	Create(ctx context.Context, classID, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	List(ctx context.Context, classID uint, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	classes repository.ClassRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		classes:     classes,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, classID, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.AssignmentResponse{}, ErrClassNotOwned
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	maxScore := payload.MaxScore
	if maxScore <= 0 {
		maxScore = 100
	}

	assignment := models.Assignment{
		ClassID:     classID,
		Title:       payload.Title,
		Description: payload.Description,
		Skill:       models.AssignmentSkill(payload.Skill),
		DueDate:     dueDate,
		MaxScore:    maxScore,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("class_id", classID).Uint("assignment_id", assignment.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, 0), nil
}

func (s *assignmentService) List(ctx context.Context, classID uint, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrClassNotFound
		}
		return nil, 0, err
	}

	assignments, total, err := s.assignments.ListByClass(ctx, classID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, dto.NewAssignmentResponse(assignment, count))
	}

	return responses, total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, count), nil
}

func (s *assignmentService) Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.Skill != nil {
		assignment.Skill = models.AssignmentSkill(*payload.Skill)
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, count), nil
}

func (s *assignmentService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedAssignment(ctx, id, teacherID); err != nil {
		return err
	}
	return s.assignments.Delete(ctx, id)
}

func (s *assignmentService) ownedAssignment(ctx context.Context, id, teacherID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		return models.Assignment{}, err
	}
	if class.TeacherID != teacherID {
		return models.Assignment{}, ErrClassNotOwned
	}

	return assignment, nil
}
