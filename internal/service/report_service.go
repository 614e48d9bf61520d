package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

const overviewCacheKey = "reports:overview"

// ReportService builds the admin dashboard aggregates.
type ReportService interface {
	Overview(ctx context.Context) (dto.OverviewResponse, error)
	ClassReport(ctx context.Context, classID uint) (dto.ClassReportResponse, error)
}

type reportService struct {
	reports     repository.ReportRepository
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	attendance  repository.AttendanceRepository
	redis       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewReportService constructs the report service. A nil redis client disables
// overview caching.
func NewReportService(
	reports repository.ReportRepository,
	classes repository.ClassRepository,
	enrollments repository.EnrollmentRepository,
	attendance repository.AttendanceRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ReportService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &reportService{
		reports:     reports,
		classes:     classes,
		enrollments: enrollments,
		attendance:  attendance,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/vstep-go-api/internal/service/report"),
	}
}

// Overview returns platform-wide counts. The result is cached briefly; staleness
// up to the TTL is acceptable for a dashboard.
func (s *reportService) Overview(ctx context.Context) (dto.OverviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.overview")
	defer span.End()

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, overviewCacheKey).Bytes(); err == nil {
			var cached dto.OverviewResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.CacheHit = true
				span.SetAttributes(attribute.Bool("reports.cache_hit", true))
				return cached, nil
			}
		}
	}

	byStatus, err := s.reports.CountClassesByStatus(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}

	byLevel, err := s.reports.CountClassesByLevel(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}

	enrollmentsByStatus, err := s.reports.CountEnrollmentsByStatus(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}

	students, err := s.reports.CountStudents(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}

	progressSum, progressCount, err := s.reports.ActiveEnrollmentProgress(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}

	overview := dto.OverviewResponse{
		ClassesByStatus:     make(map[string]int64, len(byStatus)),
		ClassesByLevel:      make(map[string]int64, len(byLevel)),
		EnrollmentsByStatus: make(map[string]int64, len(enrollmentsByStatus)),
		TotalStudents:       students,
	}

	for _, row := range byStatus {
		overview.ClassesByStatus[row.Status] = row.Count
		overview.TotalClasses += row.Count
	}
	for _, row := range byLevel {
		overview.ClassesByLevel[row.Level] = row.Count
	}
	for _, row := range enrollmentsByStatus {
		overview.EnrollmentsByStatus[row.Status] = row.Count
		overview.TotalEnrollments += row.Count
	}

	if progressCount > 0 {
		overview.AverageProgress = roundOneDecimal(progressSum / float64(progressCount))
	}
	overview.CompletionRate = overview.AverageProgress

	if s.redis != nil {
		if raw, err := json.Marshal(overview); err == nil {
			if err := s.redis.Set(ctx, overviewCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("overview cache write failed")
			}
		}
	}

	span.SetAttributes(attribute.Bool("reports.cache_hit", false))
	return overview, nil
}

func (s *reportService) ClassReport(ctx context.Context, classID uint) (dto.ClassReportResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return dto.ClassReportResponse{}, ErrClassNotFound
	}

	enrolled, _, err := s.enrollments.ListByClass(ctx, classID, repository.EnrollmentFilter{
		Status: models.EnrollmentStatusActive,
	})
	if err != nil {
		return dto.ClassReportResponse{}, err
	}

	var progressSum float64
	for _, enrollment := range enrolled {
		progressSum += enrollment.Progress
	}
	averageProgress := 0.0
	if len(enrolled) > 0 {
		averageProgress = roundOneDecimal(progressSum / float64(len(enrolled)))
	}

	records, _, err := s.attendance.ListByClass(ctx, classID, repository.AttendanceFilter{})
	if err != nil {
		return dto.ClassReportResponse{}, err
	}

	var present int
	for _, record := range records {
		if record.Status == models.AttendanceStatusPresent || record.Status == models.AttendanceStatusLate {
			present++
		}
	}
	attendanceRate := 0.0
	if len(records) > 0 {
		attendanceRate = roundOneDecimal(float64(present) / float64(len(records)) * 100)
	}

	return dto.ClassReportResponse{
		ClassID:         class.ID,
		Name:            class.Name,
		Level:           string(class.Level),
		Status:          string(class.Status),
		TeacherID:       class.TeacherID,
		Enrolled:        int64(len(enrolled)),
		MaxStudents:     class.MaxStudents,
		AverageProgress: averageProgress,
		AttendanceRate:  attendanceRate,
	}, nil
}

func roundOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
