package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

type fakeReportRepo struct {
	classesByStatus     []repository.StatusCount
	classesByLevel      []repository.LevelCount
	enrollmentsByStatus []repository.StatusCount
	students            int64
	progressSum         float64
	progressCount       int64
}

func (f *fakeReportRepo) CountClassesByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	return f.classesByStatus, nil
}

func (f *fakeReportRepo) CountClassesByLevel(ctx context.Context) ([]repository.LevelCount, error) {
	return f.classesByLevel, nil
}

func (f *fakeReportRepo) CountEnrollmentsByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	return f.enrollmentsByStatus, nil
}

func (f *fakeReportRepo) CountStudents(ctx context.Context) (int64, error) {
	return f.students, nil
}

func (f *fakeReportRepo) ActiveEnrollmentProgress(ctx context.Context) (float64, int64, error) {
	return f.progressSum, f.progressCount, nil
}

type fakeAttendanceRepo struct {
	records []models.Attendance
	batches [][]models.Attendance
}

func (f *fakeAttendanceRepo) ListByClass(ctx context.Context, classID uint, filter repository.AttendanceFilter) ([]models.Attendance, int64, error) {
	out := make([]models.Attendance, 0)
	for _, record := range f.records {
		if record.ClassID != classID {
			continue
		}
		if filter.StudentID != 0 && record.StudentID != filter.StudentID {
			continue
		}
		out = append(out, record)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) UpsertBatch(ctx context.Context, records []models.Attendance) (int64, error) {
	f.batches = append(f.batches, records)
	f.records = append(f.records, records...)
	return int64(len(records)), nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func newReportService(reports *fakeReportRepo, classes *fakeClassRepo, enrollments *memEnrollmentRepo, attendance *fakeAttendanceRepo, redisClient *redis.Client) ReportService {
	return NewReportService(reports, classes, enrollments, attendance, redisClient, time.Minute, testLogger())
}

func TestReportServiceOverview(t *testing.T) {
	reports := &fakeReportRepo{
		classesByStatus: []repository.StatusCount{
			{Status: "active", Count: 2},
			{Status: "draft", Count: 1},
		},
		classesByLevel: []repository.LevelCount{
			{Level: "B1", Count: 2},
			{Level: "B2", Count: 1},
		},
		enrollmentsByStatus: []repository.StatusCount{
			{Status: "active", Count: 3},
			{Status: "dropped", Count: 1},
		},
		students:      10,
		progressSum:   125,
		progressCount: 3,
	}
	svc := newReportService(reports, newFakeClassRepo(), newMemEnrollmentRepo(), &fakeAttendanceRepo{}, nil)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), overview.TotalClasses)
	require.Equal(t, int64(2), overview.ClassesByStatus["active"])
	require.Equal(t, int64(2), overview.ClassesByLevel["B1"])
	require.Equal(t, int64(4), overview.TotalEnrollments)
	require.Equal(t, int64(10), overview.TotalStudents)
	require.Equal(t, 41.7, overview.AverageProgress)
	require.Equal(t, overview.AverageProgress, overview.CompletionRate)
	require.False(t, overview.CacheHit)
}

func TestReportServiceOverviewCached(t *testing.T) {
	reports := &fakeReportRepo{
		classesByStatus: []repository.StatusCount{{Status: "active", Count: 1}},
		students:        5,
	}
	svc := newReportService(reports, newFakeClassRepo(), newMemEnrollmentRepo(), &fakeAttendanceRepo{}, testRedis(t))
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// A change in the underlying data is not visible until the TTL expires.
	reports.students = 50

	second, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, int64(5), second.TotalStudents)
	require.Equal(t, first.TotalClasses, second.TotalClasses)
}

func TestReportServiceClassReport(t *testing.T) {
	classes := newFakeClassRepo(models.Class{
		ID: 1, Name: "B2 Evening", Level: models.ClassLevelB2,
		Status: models.ClassStatusActive, TeacherID: 7, MaxStudents: 30,
	})
	enrollments := newMemEnrollmentRepo()
	ctx := context.Background()
	require.NoError(t, enrollments.CreateWithCapacity(ctx, &models.Enrollment{
		ClassID: 1, StudentID: 2, Status: models.EnrollmentStatusActive, Progress: 50,
	}, 30))
	require.NoError(t, enrollments.CreateWithCapacity(ctx, &models.Enrollment{
		ClassID: 1, StudentID: 3, Status: models.EnrollmentStatusActive, Progress: 75,
	}, 30))

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	attendance := &fakeAttendanceRepo{records: []models.Attendance{
		{ClassID: 1, StudentID: 2, Date: date, Status: models.AttendanceStatusPresent},
		{ClassID: 1, StudentID: 3, Date: date, Status: models.AttendanceStatusLate},
		{ClassID: 1, StudentID: 2, Date: date.AddDate(0, 0, 2), Status: models.AttendanceStatusAbsent},
		{ClassID: 1, StudentID: 3, Date: date.AddDate(0, 0, 2), Status: models.AttendanceStatusExcused},
	}}

	svc := newReportService(&fakeReportRepo{}, classes, enrollments, attendance, nil)

	report, err := svc.ClassReport(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), report.ClassID)
	require.Equal(t, int64(2), report.Enrolled)
	require.Equal(t, 62.5, report.AverageProgress)
	require.Equal(t, 50.0, report.AttendanceRate)
}

func TestReportServiceClassReportNotFound(t *testing.T) {
	svc := newReportService(&fakeReportRepo{}, newFakeClassRepo(), newMemEnrollmentRepo(), &fakeAttendanceRepo{}, nil)

	_, err := svc.ClassReport(context.Background(), 42)
	require.ErrorIs(t, err, ErrClassNotFound)
}
