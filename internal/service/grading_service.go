package service

import (
	"context"
	"errors"
	"math"
	"strings"
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
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrScoreExceedsMax indicates a grading score surpasses the assignment max.
var ErrScoreExceedsMax = errors.New("score exceeds assignment max")

// ErrSubmissionAlreadyGraded indicates a start-grading request on a submission
// that already carries a final grade.
var ErrSubmissionAlreadyGraded = errors.New("submission already graded")

// GradingService encapsulates the grading pipeline for submissions:
// pending → grading → graded.
type GradingService interface {
	StartGrading(ctx context.Context, submissionID, graderID uint) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/vstep-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

// StartGrading moves a pending submission into the grading state. Calling it
// again while grading is in progress is a no-op; a graded submission conflicts.
func (s *gradingService) StartGrading(ctx context.Context, submissionID, graderID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.start", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.grader_id", int64(graderID)),
	))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	switch submission.Status {
	case models.SubmissionStatusGrading:
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	case models.SubmissionStatusGraded:
		span.SetStatus(codes.Error, "already_graded")
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	submission.Status = models.SubmissionStatusGrading
	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("grader_id", graderID).
		Msg("grading started")

	return dto.NewSubmissionResponse(submission), nil
}

// Grade finalizes a submission with a score and feedback. Re-grading with the
// same score and feedback by the same grader is idempotent.
func (s *gradingService) Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.grader_id", int64(graderID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	maxScore := submission.Assignment.MaxScore
	if maxScore <= 0 {
		assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil {
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
		maxScore = assignment.MaxScore
		if maxScore <= 0 {
			maxScore = 100
		}
	}

	if payload.Grade > maxScore+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if submission.Grade != nil &&
		math.Abs(*submission.Grade-payload.Grade) < 1e-6 &&
		strings.TrimSpace(submission.Feedback) == feedback &&
		submission.GradedBy != nil && *submission.GradedBy == graderID {
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	grade := payload.Grade
	gradedAt := s.now()
	submission.Grade = &grade
	submission.Feedback = feedback
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Float64("grading.score", payload.Grade))
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("graded_by", graderID).
		Float64("score", payload.Grade).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}
