package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAlreadySubmitted indicates the student already submitted for the assignment.
var ErrAlreadySubmitted = errors.New("assignment already submitted")

// ErrNotEnrolledForAssignment indicates the student holds no active enrollment
// in the class the assignment belongs to.
var ErrNotEnrolledForAssignment = errors.New("student not enrolled in assignment class")

// SubmissionService encapsulates student submission workflows.
type SubmissionService interface {
	Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID, teacherID uint, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	GetOwn(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	enrollments repository.EnrollmentRepository,
	classes repository.ClassRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		classes:     classes,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit records a student's work. One submission per (assignment, student);
// the unique index backstops concurrent double submits.
func (s *submissionService) Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrollment, err := s.enrollments.GetByClassAndStudent(ctx, assignment.ClassID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotEnrolledForAssignment
		}
		return dto.SubmissionResponse{}, err
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return dto.SubmissionResponse{}, ErrNotEnrolledForAssignment
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	answers := datatypes.JSON(payload.Answers)
	if len(answers) == 0 {
		answers = datatypes.JSON([]byte("{}"))
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Answers:      answers,
		FileURL:      payload.FileURL,
		Status:       models.SubmissionStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Msg("submission received")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID, teacherID uint, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, int64, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrAssignmentNotFound
		}
		return nil, 0, err
	}

	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		return nil, 0, err
	}
	if class.TeacherID != teacherID {
		return nil, 0, ErrClassNotOwned
	}

	submissions, total, err := s.submissions.ListByAssignment(ctx, assignmentID, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewSubmissionResponseSlice(submissions), total, nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetOwn(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}
