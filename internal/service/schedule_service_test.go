package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
)

func newScheduleService(schedules *fakeScheduleRepo, classes *fakeClassRepo) ScheduleService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewScheduleService(schedules, classes, validate, testLogger())
}

func TestScheduleServiceCreate(t *testing.T) {
	classes := newFakeClassRepo(models.Class{ID: 1, Name: "B2 Evening", TeacherID: 7, Status: models.ClassStatusActive})
	schedules := newFakeScheduleRepo()
	svc := newScheduleService(schedules, classes)

	created, err := svc.Create(context.Background(), 1, 7, dto.ScheduleCreateRequest{
		Topic:    "Listening Part 1",
		Weekday:  2,
		StartsAt: "18:00",
		EndsAt:   "19:30",
		Room:     "204",
		Items:    []string{"dialogue drills", "note-taking"},
	})
	require.NoError(t, err)
	require.Equal(t, "Listening Part 1", created.Topic)
	require.Equal(t, []string{"dialogue drills", "note-taking"}, created.Items)

	listed, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, created.Items, listed[0].Items)
}

func TestScheduleServiceCreateInvalidTimes(t *testing.T) {
	classes := newFakeClassRepo(models.Class{ID: 1, Name: "B2 Evening", TeacherID: 7, Status: models.ClassStatusActive})
	svc := newScheduleService(newFakeScheduleRepo(), classes)

	_, err := svc.Create(context.Background(), 1, 7, dto.ScheduleCreateRequest{
		Topic:    "Backwards session",
		Weekday:  2,
		StartsAt: "19:30",
		EndsAt:   "18:00",
	})
	require.ErrorIs(t, err, ErrInvalidSessionTime)

	_, err = svc.Create(context.Background(), 1, 7, dto.ScheduleCreateRequest{
		Topic:    "Zero length",
		Weekday:  2,
		StartsAt: "18:00",
		EndsAt:   "18:00",
	})
	require.ErrorIs(t, err, ErrInvalidSessionTime)
}

func TestScheduleServiceUpdateKeepsValidRange(t *testing.T) {
	classes := newFakeClassRepo(models.Class{ID: 1, Name: "B2 Evening", TeacherID: 7, Status: models.ClassStatusActive})
	schedules := newFakeScheduleRepo()
	svc := newScheduleService(schedules, classes)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 7, dto.ScheduleCreateRequest{
		Topic: "Reading", Weekday: 4, StartsAt: "18:00", EndsAt: "19:30",
	})
	require.NoError(t, err)

	// Moving the start past the end is rejected even when only one side changes.
	late := "20:00"
	_, err = svc.Update(ctx, created.ID, 7, dto.ScheduleUpdateRequest{StartsAt: &late})
	require.ErrorIs(t, err, ErrInvalidSessionTime)

	early := "17:00"
	updated, err := svc.Update(ctx, created.ID, 7, dto.ScheduleUpdateRequest{StartsAt: &early})
	require.NoError(t, err)
	require.Equal(t, "17:00", updated.StartsAt)
}

func TestScheduleServiceOwnership(t *testing.T) {
	classes := newFakeClassRepo(models.Class{ID: 1, Name: "B2 Evening", TeacherID: 7, Status: models.ClassStatusActive})
	schedules := newFakeScheduleRepo()
	svc := newScheduleService(schedules, classes)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 7, dto.ScheduleCreateRequest{
		Topic: "Writing", Weekday: 5, StartsAt: "18:00", EndsAt: "19:30",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, created.ID, 99), ErrClassNotOwned)
	require.NoError(t, svc.Delete(ctx, created.ID, 7))
	require.ErrorIs(t, svc.Delete(ctx, created.ID, 7), ErrScheduleNotFound)
}
