package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrScheduleNotFound indicates the schedule entry was not located.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrInvalidSessionTime indicates the session times do not form a valid range.
var ErrInvalidSessionTime = errors.New("session end must be after start")

// ScheduleService encapsulates class session management.
type ScheduleService interface {
	Create(ctx context.Context, classID, teacherID uint, payload dto.ScheduleCreateRequest) (dto.ScheduleResponse, error)
	List(ctx context.Context, classID uint) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.ScheduleUpdateRequest) (dto.ScheduleResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
}

type scheduleService struct {
	schedules repository.ScheduleRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(
	schedules repository.ScheduleRepository,
	classes repository.ClassRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ScheduleService {
	return &scheduleService{
		schedules: schedules,
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "schedule_service").Logger(),
	}
}

func (s *scheduleService) Create(ctx context.Context, classID, teacherID uint, payload dto.ScheduleCreateRequest) (dto.ScheduleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := validateSessionTimes(payload.StartsAt, payload.EndsAt); err != nil {
		return dto.ScheduleResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, ErrClassNotFound
		}
		return dto.ScheduleResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.ScheduleResponse{}, ErrClassNotOwned
	}

	items, err := marshalItems(payload.Items)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	schedule := models.Schedule{
		ClassID:    classID,
		Topic:      payload.Topic,
		Weekday:    time.Weekday(payload.Weekday),
		StartsAt:   payload.StartsAt,
		EndsAt:     payload.EndsAt,
		Room:       payload.Room,
		MeetingURL: payload.MeetingURL,
		Items:      items,
	}

	if err := s.schedules.Create(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	return dto.NewScheduleResponse(schedule, payload.Items), nil
}

func (s *scheduleService) List(ctx context.Context, classID uint) ([]dto.ScheduleResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	schedules, err := s.schedules.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, dto.NewScheduleResponse(schedule, unmarshalItems(schedule.Items)))
	}

	return responses, nil
}

func (s *scheduleService) Update(ctx context.Context, id, teacherID uint, payload dto.ScheduleUpdateRequest) (dto.ScheduleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	schedule, err := s.ownedSchedule(ctx, id, teacherID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	if payload.Topic != nil {
		schedule.Topic = *payload.Topic
	}
	if payload.Weekday != nil {
		schedule.Weekday = time.Weekday(*payload.Weekday)
	}
	if payload.StartsAt != nil {
		schedule.StartsAt = *payload.StartsAt
	}
	if payload.EndsAt != nil {
		schedule.EndsAt = *payload.EndsAt
	}
	if payload.Room != nil {
		schedule.Room = *payload.Room
	}
	if payload.MeetingURL != nil {
		schedule.MeetingURL = *payload.MeetingURL
	}
	if payload.Items != nil {
		items, err := marshalItems(payload.Items)
		if err != nil {
			return dto.ScheduleResponse{}, err
		}
		schedule.Items = items
	}

	if err := validateSessionTimes(schedule.StartsAt, schedule.EndsAt); err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := s.schedules.Update(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	return dto.NewScheduleResponse(schedule, unmarshalItems(schedule.Items)), nil
}

func (s *scheduleService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedSchedule(ctx, id, teacherID); err != nil {
		return err
	}
	return s.schedules.Delete(ctx, id)
}

func (s *scheduleService) ownedSchedule(ctx context.Context, id, teacherID uint) (models.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Schedule{}, ErrScheduleNotFound
		}
		return models.Schedule{}, err
	}

	class, err := s.classes.GetByID(ctx, schedule.ClassID)
	if err != nil {
		return models.Schedule{}, err
	}
	if class.TeacherID != teacherID {
		return models.Schedule{}, ErrClassNotOwned
	}

	return schedule, nil
}

func validateSessionTimes(startsAt, endsAt string) error {
	start, err := time.Parse("15:04", startsAt)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", startsAt, err)
	}
	end, err := time.Parse("15:04", endsAt)
	if err != nil {
		return fmt.Errorf("invalid end time %q: %w", endsAt, err)
	}
	if !end.After(start) {
		return ErrInvalidSessionTime
	}
	return nil
}

func marshalItems(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalItems(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	return items
}
