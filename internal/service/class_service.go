package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/observability"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// Invite codes avoid 0/O/1/I so they survive being read out loud.
const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// inviteCodeLength is fixed; the join endpoint validates against it.
const inviteCodeLength = 8

// ErrClassNotFound indicates the class was not located.
var ErrClassNotFound = errors.New("class not found")

// ErrClassNotOwned indicates the caller does not own the class.
var ErrClassNotOwned = errors.New("class does not belong to caller")

// ErrInvalidTransition indicates a lifecycle move the state machine forbids.
var ErrInvalidTransition = errors.New("invalid class status transition")

// ErrClassHasActiveStudents blocks deleting a class that still has active enrollments.
var ErrClassHasActiveStudents = errors.New("class still has active enrollments")

// ErrInviteCodeExhausted is returned when code generation keeps colliding.
var ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")

// ClassService encapsulates the class registry workflows.
type ClassService interface {
	Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, int64, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Activate(ctx context.Context, id uint) (dto.ClassResponse, error)
	Complete(ctx context.Context, id uint) (dto.ClassResponse, error)
	Archive(ctx context.Context, id uint) (dto.ClassResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
	RegenerateInviteCode(ctx context.Context, id, teacherID uint) (dto.ClassResponse, error)
	PreviewByCode(ctx context.Context, code string) (dto.ClassPreviewResponse, error)
}

type classService struct {
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	schedules   repository.ScheduleRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	maxAttempts int
}

// NewClassService constructs the class registry service.
func NewClassService(
	classes repository.ClassRepository,
	enrollments repository.EnrollmentRepository,
	schedules repository.ScheduleRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
	maxInviteAttempts int,
) ClassService {
	if maxInviteAttempts <= 0 {
		maxInviteAttempts = 5
	}

	return &classService{
		classes:     classes,
		enrollments: enrollments,
		schedules:   schedules,
		validator:   validate,
		logger:      logger.With().Str("component", "class_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/vstep-go-api/internal/service/class"),
		maxAttempts: maxInviteAttempts,
	}
}

func (s *classService) Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	ctx, span := s.tracer.Start(ctx, "classes.create",
		trace.WithAttributes(attribute.Int64("class.teacher_id", int64(teacherID))))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ClassResponse{}, err
	}

	level := models.ClassLevel(payload.Level)
	if level == "" {
		level = models.ClassLevelB1
	}

	maxStudents := payload.MaxStudents
	if maxStudents <= 0 {
		maxStudents = 30
	}

	startDate, err := parseDatePtr(payload.StartDate)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	endDate, err := parseDatePtr(payload.EndDate)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name:        payload.Name,
		Description: payload.Description,
		Level:       level,
		Status:      models.ClassStatusDraft,
		TeacherID:   teacherID,
		MaxStudents: maxStudents,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	if err := s.createWithInviteCode(ctx, &class); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "class_create_failed")
		return dto.ClassResponse{}, err
	}

	for _, item := range payload.Schedule {
		schedule := models.Schedule{
			ClassID:  class.ID,
			Topic:    item.Topic,
			Weekday:  time.Weekday(item.Weekday),
			StartsAt: item.StartsAt,
			EndsAt:   item.EndsAt,
			Room:     item.Room,
			Items:    datatypes.JSON([]byte("[]")),
		}
		if err := s.schedules.Create(ctx, &schedule); err != nil {
			s.logger.Warn().Err(err).Uint("class_id", class.ID).Msg("failed to create schedule item")
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Int64("class.id", int64(class.ID)))
	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")

	return dto.NewClassResponse(class, 0), nil
}

// createWithInviteCode inserts the class, retrying with a fresh code when the
// unique index on invite_code reports a collision. The database, not a prior
// SELECT, is the arbiter of uniqueness.
func (s *classService) createWithInviteCode(ctx context.Context, class *models.Class) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return err
		}
		class.ID = 0
		class.InviteCode = code

		err = s.classes.Create(ctx, class)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		observability.InviteCodeRetries().Inc()
		s.logger.Warn().Int("attempt", attempt+1).Msg("invite code collision, retrying")
	}

	return ErrInviteCodeExhausted
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	enrolled, err := s.enrollments.CountActive(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class, enrolled), nil
}

func (s *classService) List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, int64, error) {
	classes, total, err := s.classes.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		enrolled, err := s.enrollments.CountActive(ctx, class.ID)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, dto.NewClassResponse(class, enrolled))
	}

	return responses, total, nil
}

func (s *classService) Update(ctx context.Context, id, teacherID uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	if payload.Name != nil {
		class.Name = *payload.Name
	}
	if payload.Description != nil {
		class.Description = *payload.Description
	}
	if payload.Level != nil {
		class.Level = models.ClassLevel(*payload.Level)
	}
	if payload.MaxStudents != nil {
		class.MaxStudents = *payload.MaxStudents
	}
	if payload.StartDate != nil {
		start, err := parseDatePtr(payload.StartDate)
		if err != nil {
			return dto.ClassResponse{}, err
		}
		class.StartDate = start
	}
	if payload.EndDate != nil {
		end, err := parseDatePtr(payload.EndDate)
		if err != nil {
			return dto.ClassResponse{}, err
		}
		class.EndDate = end
	}

	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	enrolled, err := s.enrollments.CountActive(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class, enrolled), nil
}

func (s *classService) Activate(ctx context.Context, id uint) (dto.ClassResponse, error) {
	return s.transition(ctx, id, models.ClassStatusDraft, models.ClassStatusActive)
}

// Complete marks the class finished and cascades every active enrollment to
// completed in one transaction.
func (s *classService) Complete(ctx context.Context, id uint) (dto.ClassResponse, error) {
	ctx, span := s.tracer.Start(ctx, "classes.complete",
		trace.WithAttributes(attribute.Int64("class.id", int64(id))))
	defer span.End()

	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if class.Status != models.ClassStatusActive {
		span.SetStatus(codes.Error, "invalid_transition")
		return dto.ClassResponse{}, ErrInvalidTransition
	}

	if err := s.classes.CompleteWithEnrollments(ctx, &class); err != nil {
		span.RecordError(err)
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Msg("class completed")

	return dto.NewClassResponse(class, 0), nil
}

func (s *classService) Archive(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	// Draft and completed classes may be archived; active ones must complete first.
	if class.Status != models.ClassStatusDraft && class.Status != models.ClassStatusCompleted {
		return dto.ClassResponse{}, ErrInvalidTransition
	}

	class.Status = models.ClassStatusArchived
	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class, 0), nil
}

func (s *classService) transition(ctx context.Context, id uint, from, to models.ClassStatus) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if class.Status != from {
		return dto.ClassResponse{}, ErrInvalidTransition
	}

	class.Status = to
	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	enrolled, err := s.enrollments.CountActive(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().
		Uint("class_id", class.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("class status changed")

	return dto.NewClassResponse(class, enrolled), nil
}

func (s *classService) Delete(ctx context.Context, id, teacherID uint) error {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return err
	}

	active, err := s.enrollments.CountActive(ctx, class.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrClassHasActiveStudents
	}

	return s.classes.Delete(ctx, class.ID)
}

func (s *classService) RegenerateInviteCode(ctx context.Context, id, teacherID uint) (dto.ClassResponse, error) {
	class, err := s.ownedClass(ctx, id, teacherID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return dto.ClassResponse{}, err
		}
		class.InviteCode = code

		err = s.classes.Update(ctx, &class)
		if err == nil {
			enrolled, err := s.enrollments.CountActive(ctx, class.ID)
			if err != nil {
				return dto.ClassResponse{}, err
			}
			return dto.NewClassResponse(class, enrolled), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassResponse{}, err
		}
		observability.InviteCodeRetries().Inc()
	}

	return dto.ClassResponse{}, ErrInviteCodeExhausted
}

// PreviewByCode resolves an invite code into the reduced class view a student
// sees before joining. Only joinable classes resolve; the code is never echoed.
func (s *classService) PreviewByCode(ctx context.Context, code string) (dto.ClassPreviewResponse, error) {
	class, err := s.classes.GetByInviteCode(ctx, code, models.ClassStatusActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassPreviewResponse{}, ErrClassNotFound
		}
		return dto.ClassPreviewResponse{}, err
	}

	seats, err := s.enrollments.CountSeats(ctx, class.ID)
	if err != nil {
		return dto.ClassPreviewResponse{}, err
	}

	return dto.NewClassPreviewResponse(class, seats), nil
}

func (s *classService) ownedClass(ctx context.Context, id, teacherID uint) (models.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Class{}, ErrClassNotFound
		}
		return models.Class{}, err
	}

	if class.TeacherID != teacherID {
		return models.Class{}, ErrClassNotOwned
	}

	return class, nil
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}

	return string(buf), nil
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}

	return &parsed, nil
}
