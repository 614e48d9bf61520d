package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/observability"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrClassFull indicates the class has no free seats left.
var ErrClassFull = errors.New("class is full")

// ErrAlreadyEnrolled indicates the student already holds a seat in the class.
var ErrAlreadyEnrolled = errors.New("student already enrolled")

// ErrClassNotJoinable indicates the class does not accept enrollments in its
// current status.
var ErrClassNotJoinable = errors.New("class is not accepting enrollments")

// ErrEnrollmentNotFound indicates the enrollment was not located.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrStudentNotFound indicates the referenced student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrInvalidInviteCode indicates no joinable class matches the supplied code.
var ErrInvalidInviteCode = errors.New("invalid invite code")

// ErrNotActiveEnrollment indicates the operation needs an active enrollment.
var ErrNotActiveEnrollment = errors.New("enrollment is not active")

// EnrollmentService encapsulates seat management for classes.
type EnrollmentService interface {
	Enroll(ctx context.Context, classID, teacherID uint, payload dto.EnrollRequest) (dto.EnrollmentResponse, error)
	BulkEnroll(ctx context.Context, classID, teacherID uint, payload dto.BulkEnrollRequest) (dto.BulkEnrollResponse, error)
	JoinByCode(ctx context.Context, studentID uint, payload dto.JoinRequest) (dto.EnrollmentResponse, error)
	Remove(ctx context.Context, classID, studentID, teacherID uint) error
	Leave(ctx context.Context, classID, studentID uint) error
	UpdateEnrollment(ctx context.Context, classID, studentID, teacherID uint, payload dto.EnrollmentUpdateRequest) (dto.EnrollmentResponse, error)
	ListStudents(ctx context.Context, classID uint, filter repository.EnrollmentFilter) ([]dto.EnrollmentResponse, int64, error)
	ListStudentClasses(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	StudentClass(ctx context.Context, classID, studentID uint) (dto.StudentClassResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	classes     repository.ClassRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	classes repository.ClassRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		classes:     classes,
		students:    students,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/vstep-go-api/internal/service/enrollment"),
		now:         time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, classID, teacherID uint, payload dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollments.enroll", trace.WithAttributes(
		attribute.Int64("enrollment.class_id", int64(classID)),
		attribute.Int64("enrollment.student_id", int64(payload.StudentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EnrollmentResponse{}, err
	}

	class, err := s.joinableOwnedClass(ctx, classID, teacherID)
	if err != nil {
		span.RecordError(err)
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := s.enrollStudent(ctx, class, payload.StudentID)
	if err != nil {
		span.RecordError(err)
		observability.Enrollments().WithLabelValues("enroll", "failure").Inc()
		return dto.EnrollmentResponse{}, err
	}

	observability.Enrollments().WithLabelValues("enroll", "success").Inc()
	s.logger.Info().
		Uint("class_id", classID).
		Uint("student_id", payload.StudentID).
		Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

// BulkEnroll processes each student independently. The batch never fails as a
// whole; per-student failures come back in the response.
func (s *enrollmentService) BulkEnroll(ctx context.Context, classID, teacherID uint, payload dto.BulkEnrollRequest) (dto.BulkEnrollResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollments.bulk_enroll", trace.WithAttributes(
		attribute.Int64("enrollment.class_id", int64(classID)),
		attribute.Int("enrollment.batch_size", len(payload.StudentIDs)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkEnrollResponse{}, err
	}

	class, err := s.joinableOwnedClass(ctx, classID, teacherID)
	if err != nil {
		span.RecordError(err)
		return dto.BulkEnrollResponse{}, err
	}

	existing, err := s.students.ExistingIDs(ctx, payload.StudentIDs)
	if err != nil {
		span.RecordError(err)
		return dto.BulkEnrollResponse{}, err
	}

	result := dto.BulkEnrollResponse{
		Enrolled: make([]dto.EnrollmentResponse, 0, len(payload.StudentIDs)),
		Failed:   make([]dto.BulkEnrollFailure, 0),
	}

	seen := make(map[uint]bool, len(payload.StudentIDs))
	for _, studentID := range payload.StudentIDs {
		if seen[studentID] {
			result.Failed = append(result.Failed, dto.BulkEnrollFailure{
				StudentID: studentID,
				Reason:    "duplicate id in request",
			})
			continue
		}
		seen[studentID] = true

		if !existing[studentID] {
			result.Failed = append(result.Failed, dto.BulkEnrollFailure{
				StudentID: studentID,
				Reason:    ErrStudentNotFound.Error(),
			})
			observability.Enrollments().WithLabelValues("bulk", "failure").Inc()
			continue
		}

		enrollment, err := s.enrollStudent(ctx, class, studentID)
		if err != nil {
			result.Failed = append(result.Failed, dto.BulkEnrollFailure{
				StudentID: studentID,
				Reason:    err.Error(),
			})
			observability.Enrollments().WithLabelValues("bulk", "failure").Inc()
			continue
		}

		result.Enrolled = append(result.Enrolled, dto.NewEnrollmentResponse(enrollment))
		observability.Enrollments().WithLabelValues("bulk", "success").Inc()
	}

	span.SetAttributes(
		attribute.Int("enrollment.enrolled", len(result.Enrolled)),
		attribute.Int("enrollment.failed", len(result.Failed)),
	)

	return result, nil
}

func (s *enrollmentService) JoinByCode(ctx context.Context, studentID uint, payload dto.JoinRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollments.join", trace.WithAttributes(
		attribute.Int64("enrollment.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EnrollmentResponse{}, err
	}

	class, err := s.classes.GetByInviteCode(ctx, payload.InviteCode, models.ClassStatusActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "invalid_invite_code")
			return dto.EnrollmentResponse{}, ErrInvalidInviteCode
		}
		span.RecordError(err)
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := s.enrollStudent(ctx, class, studentID)
	if err != nil {
		span.RecordError(err)
		observability.Enrollments().WithLabelValues("join", "failure").Inc()
		return dto.EnrollmentResponse{}, err
	}

	observability.Enrollments().WithLabelValues("join", "success").Inc()
	s.logger.Info().
		Uint("class_id", class.ID).
		Uint("student_id", studentID).
		Msg("student joined by invite code")

	return dto.NewEnrollmentResponse(enrollment), nil
}

// enrollStudent holds the shared enroll path: verify the student exists, then
// either reactivate a previously dropped row or insert a new one. Capacity is
// re-checked inside the repository transaction either way.
func (s *enrollmentService) enrollStudent(ctx context.Context, class models.Class, studentID uint) (models.Enrollment, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrStudentNotFound
		}
		return models.Enrollment{}, err
	}

	existing, err := s.enrollments.GetByClassAndStudent(ctx, class.ID, studentID)
	switch {
	case err == nil:
		if existing.CountsTowardCapacity() || existing.Status == models.EnrollmentStatusCompleted {
			return models.Enrollment{}, ErrAlreadyEnrolled
		}
		// Dropped before: reactivate the same row so history survives.
		if err := s.enrollments.ReactivateWithCapacity(ctx, &existing, class.MaxStudents); err != nil {
			if errors.Is(err, repository.ErrCapacityExceeded) {
				return models.Enrollment{}, ErrClassFull
			}
			return models.Enrollment{}, err
		}
		return existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		enrollment := models.Enrollment{
			ClassID:   class.ID,
			StudentID: studentID,
			Status:    models.EnrollmentStatusActive,
			JoinedAt:  s.now().UTC(),
		}
		if err := s.enrollments.CreateWithCapacity(ctx, &enrollment, class.MaxStudents); err != nil {
			switch {
			case errors.Is(err, repository.ErrCapacityExceeded):
				return models.Enrollment{}, ErrClassFull
			case errors.Is(err, gorm.ErrDuplicatedKey):
				// Lost a race with a concurrent enroll for the same student.
				return models.Enrollment{}, ErrAlreadyEnrolled
			default:
				return models.Enrollment{}, err
			}
		}
		return enrollment, nil

	default:
		return models.Enrollment{}, err
	}
}

// Remove drops a student from the class. The row is kept with status dropped
// so a later re-enroll reuses it.
func (s *enrollmentService) Remove(ctx context.Context, classID, studentID, teacherID uint) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return ErrClassNotOwned
	}

	enrollment, err := s.enrollments.GetByClassAndStudent(ctx, classID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	if !enrollment.CountsTowardCapacity() {
		return ErrNotActiveEnrollment
	}

	droppedAt := s.now().UTC()
	enrollment.Status = models.EnrollmentStatusDropped
	enrollment.DroppedAt = &droppedAt
	enrollment.RemovedBy = &teacherID

	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return err
	}

	observability.Enrollments().WithLabelValues("remove", "success").Inc()
	s.logger.Info().
		Uint("class_id", classID).
		Uint("student_id", studentID).
		Uint("removed_by", teacherID).
		Msg("student removed from class")

	return nil
}

// Leave lets a student drop their own active enrollment.
func (s *enrollmentService) Leave(ctx context.Context, classID, studentID uint) error {
	enrollment, err := s.enrollments.GetByClassAndStudent(ctx, classID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	if enrollment.Status != models.EnrollmentStatusActive {
		return ErrNotActiveEnrollment
	}

	droppedAt := s.now().UTC()
	enrollment.Status = models.EnrollmentStatusDropped
	enrollment.DroppedAt = &droppedAt
	enrollment.RemovedBy = nil

	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return err
	}

	observability.Enrollments().WithLabelValues("leave", "success").Inc()
	return nil
}

func (s *enrollmentService) UpdateEnrollment(ctx context.Context, classID, studentID, teacherID uint, payload dto.EnrollmentUpdateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrClassNotFound
		}
		return dto.EnrollmentResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.EnrollmentResponse{}, ErrClassNotOwned
	}

	enrollment, err := s.enrollments.GetByClassAndStudent(ctx, classID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if payload.Status != nil {
		status := models.EnrollmentStatus(*payload.Status)
		if status == models.EnrollmentStatusDropped && enrollment.Status != models.EnrollmentStatusDropped {
			droppedAt := s.now().UTC()
			enrollment.DroppedAt = &droppedAt
			enrollment.RemovedBy = &teacherID
		}
		enrollment.Status = status
	}
	if payload.Progress != nil {
		enrollment.Progress = *payload.Progress
	}

	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListStudents(ctx context.Context, classID uint, filter repository.EnrollmentFilter) ([]dto.EnrollmentResponse, int64, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrClassNotFound
		}
		return nil, 0, err
	}

	enrollments, total, err := s.enrollments.ListByClass(ctx, classID, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), total, nil
}

func (s *enrollmentService) ListStudentClasses(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID,
		models.EnrollmentStatusActive, models.EnrollmentStatusInactive, models.EnrollmentStatusCompleted)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

// StudentClass returns the class detail a student sees for a class they are
// (or were) enrolled in. The invite code is stripped from the response.
func (s *enrollmentService) StudentClass(ctx context.Context, classID, studentID uint) (dto.StudentClassResponse, error) {
	enrollment, err := s.enrollments.GetByClassAndStudent(ctx, classID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentClassResponse{}, ErrEnrollmentNotFound
		}
		return dto.StudentClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentClassResponse{}, ErrClassNotFound
		}
		return dto.StudentClassResponse{}, err
	}

	active, err := s.enrollments.CountActive(ctx, classID)
	if err != nil {
		return dto.StudentClassResponse{}, err
	}

	class.InviteCode = ""
	return dto.StudentClassResponse{
		Class:      dto.NewClassResponse(class, active),
		Enrollment: dto.NewEnrollmentResponse(enrollment),
	}, nil
}

func (s *enrollmentService) joinableOwnedClass(ctx context.Context, classID, teacherID uint) (models.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Class{}, ErrClassNotFound
		}
		return models.Class{}, err
	}

	if class.TeacherID != teacherID {
		return models.Class{}, ErrClassNotOwned
	}
	if !class.IsJoinable() {
		return models.Class{}, ErrClassNotJoinable
	}

	return class, nil
}
