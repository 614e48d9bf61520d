package performance_test

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/handler"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
)

func setupReportPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:report_perf?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Class{}, &models.Enrollment{}, &models.Attendance{}))

	// Seed dataset: a handful of classes with enrolled students.
	for c := 1; c <= 5; c++ {
		class := models.Class{
			Name: fmt.Sprintf("VSTEP B2 %d", c), Level: models.ClassLevelB2,
			Status: models.ClassStatusActive, TeacherID: 7, MaxStudents: 30,
			InviteCode: fmt.Sprintf("PERF%04d", c),
		}
		require.NoError(t, db.Create(&class).Error)
	}
	for s := 1; s <= 30; s++ {
		student := models.Student{Name: fmt.Sprintf("Student %d", s), Email: fmt.Sprintf("perf-%d@example.com", s)}
		require.NoError(t, db.Create(&student).Error)
		enrollment := models.Enrollment{
			ClassID: uint(s%5 + 1), StudentID: student.ID,
			Status: models.EnrollmentStatusActive, Progress: float64(s % 100), JoinedAt: time.Now().UTC(),
		}
		require.NoError(t, db.Create(&enrollment).Error)
	}

	reportRepo := repository.NewReportRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	// Nil redis client keeps the cache out of the measurement.
	reportService := service.NewReportService(reportRepo, classRepo, enrollmentRepo, attendanceRepo, nil, 0, zerolog.Nop())
	reportHandler := handler.NewReportHandler(reportService, zerolog.Nop())

	app := fiber.New()
	reportHandler.Register(app.Group("/api/admin/reports"))

	return app
}

func TestOverviewReportP95LatencyBelow250ms(t *testing.T) {
	app := setupReportPerformanceApp(t)

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/overview", nil)
		start := time.Now()
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	p95 := durations[index]

	require.LessOrEqual(t, p95, 250*time.Millisecond)
}
