package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrStudentNotInClass indicates an attendance entry names a student who has
// no active enrollment in the class.
var ErrStudentNotInClass = errors.New("student is not enrolled in class")

// AttendanceService encapsulates attendance recording and queries.
type AttendanceService interface {
	Record(ctx context.Context, classID, teacherID uint, payload dto.AttendanceBatchRequest) ([]dto.AttendanceResponse, error)
	List(ctx context.Context, classID uint, filter repository.AttendanceFilter) ([]dto.AttendanceResponse, int64, error)
}

type attendanceService struct {
	attendance  repository.AttendanceRepository
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(
	attendance repository.AttendanceRepository,
	classes repository.ClassRepository,
	enrollments repository.EnrollmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceService{
		attendance:  attendance,
		classes:     classes,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger.With().Str("component", "attendance_service").Logger(),
		now:         time.Now,
	}
}

// Record upserts attendance for one session date. Submitting the same date
// again overwrites the earlier statuses row by row.
func (s *attendanceService) Record(ctx context.Context, classID, teacherID uint, payload dto.AttendanceBatchRequest) ([]dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, ErrClassNotOwned
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", payload.Date, err)
	}

	enrolled, _, err := s.enrollments.ListByClass(ctx, classID, repository.EnrollmentFilter{
		Status: models.EnrollmentStatusActive,
	})
	if err != nil {
		return nil, err
	}
	active := make(map[uint]bool, len(enrolled))
	for _, enrollment := range enrolled {
		active[enrollment.StudentID] = true
	}

	records := make([]models.Attendance, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		if !active[entry.StudentID] {
			return nil, fmt.Errorf("%w: student %d", ErrStudentNotInClass, entry.StudentID)
		}
		records = append(records, models.Attendance{
			ClassID:    classID,
			StudentID:  entry.StudentID,
			Date:       date,
			Status:     models.AttendanceStatus(entry.Status),
			Note:       entry.Note,
			RecordedBy: teacherID,
		})
	}

	affected, err := s.attendance.UpsertBatch(ctx, records)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("class_id", classID).
		Str("date", payload.Date).
		Int64("rows", affected).
		Msg("attendance recorded")

	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) List(ctx context.Context, classID uint, filter repository.AttendanceFilter) ([]dto.AttendanceResponse, int64, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrClassNotFound
		}
		return nil, 0, err
	}

	records, total, err := s.attendance.ListByClass(ctx, classID, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewAttendanceResponseSlice(records), total, nil
}
