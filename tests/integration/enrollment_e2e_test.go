package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/config"
	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/handler"
	"github.com/noah-isme/vstep-go-api/internal/middleware"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/router"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// setupEnrollmentApp wires the real class and enrollment stack against sqlite.
// The JWT stub picks the identity from the request path: the admin console,
// the teacher surface and the student surface each act as a different user.
func setupEnrollmentApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:enrollment_e2e?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Class{}, &models.Enrollment{}, &models.Schedule{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	classService := service.NewClassService(classRepo, enrollmentRepo, scheduleRepo, validate, logger, 5)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classRepo, studentRepo, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	cfg := config.Config{
		AppName:        "Test",
		JWTSecret:      "secret",
		JoinRateLimit:  100,
		JoinRateWindow: time.Minute,
	}
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:        handler.NewClassHandler(classService, enrollmentService, logger),
		StudentClassHandler: handler.NewStudentClassHandler(classService, enrollmentService, logger),
		AdminClassHandler:   handler.NewAdminClassHandler(classService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			switch {
			case strings.HasPrefix(c.Path(), "/api/admin"):
				c.Locals("user_id", uint(9001))
				c.Locals("user_role", "admin")
			case strings.HasPrefix(c.Path(), "/api/v1/student"):
				c.Locals("user_id", uint(2))
				c.Locals("user_role", "student")
			default:
				c.Locals("user_id", uint(1))
				c.Locals("user_role", "teacher")
			}
			return c.Next()
		},
	})

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, target string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(http.MethodPost, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestEnrollmentLifecycleEndToEnd(t *testing.T) {
	app, db := setupEnrollmentApp(t)

	for i := 1; i <= 3; i++ {
		student := models.Student{Name: fmt.Sprintf("Student %d", i), Email: fmt.Sprintf("e2e-%d@example.com", i)}
		require.NoError(t, db.Create(&student).Error)
	}

	// Step 1: the teacher creates a small class. It starts in draft.
	resp := postJSON(t, app, "/api/v1/classes", map[string]interface{}{
		"name":         "VSTEP B2 Evening",
		"level":        "B2",
		"max_students": 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool              `json:"success"`
		Data    dto.ClassResponse `json:"data"`
	}
	decode(t, resp, &created)
	require.Equal(t, "draft", created.Data.Status)
	require.Len(t, created.Data.InviteCode, 8)
	classID := created.Data.ID
	inviteCode := created.Data.InviteCode

	// Step 2: nobody can join while the class is a draft.
	resp = postJSON(t, app, "/api/v1/student/classes/join", map[string]interface{}{"invite_code": inviteCode})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Step 3: the admin activates the class.
	resp = postJSON(t, app, fmt.Sprintf("/api/admin/classes/%d/activate", classID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Step 4: student 2 joins through the invite code.
	resp = postJSON(t, app, "/api/v1/student/classes/join", map[string]interface{}{"invite_code": inviteCode})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var joined struct {
		Data dto.EnrollmentResponse `json:"data"`
	}
	decode(t, resp, &joined)
	require.Equal(t, uint(2), joined.Data.StudentID)
	firstRowID := joined.Data.ID

	// Step 5: the teacher fills the last seat with student 3.
	resp = postJSON(t, app, fmt.Sprintf("/api/v1/classes/%d/students", classID), map[string]interface{}{"student_id": 3})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Step 6: a third enrollment bounces off the capacity check.
	resp = postJSON(t, app, fmt.Sprintf("/api/v1/classes/%d/students", classID), map[string]interface{}{"student_id": 1})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var conflict utils.APIResponse
	decode(t, resp, &conflict)
	require.Equal(t, "class is full", conflict.Message)

	// Step 7: student 2 leaves, freeing a seat but keeping the row.
	leaveReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/student/classes/%d/leave", classID), nil)
	resp, err := app.Test(leaveReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Step 8: joining again reactivates the original enrollment row.
	resp = postJSON(t, app, "/api/v1/student/classes/join", map[string]interface{}{"invite_code": inviteCode})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var rejoined struct {
		Data dto.EnrollmentResponse `json:"data"`
	}
	decode(t, resp, &rejoined)
	require.Equal(t, firstRowID, rejoined.Data.ID)
	require.Equal(t, "active", rejoined.Data.Status)

	var rowCount int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("class_id = ?", classID).Count(&rowCount).Error)
	require.Equal(t, int64(2), rowCount)

	// Step 9: completing the class closes every active enrollment with it.
	resp = postJSON(t, app, fmt.Sprintf("/api/admin/classes/%d/complete", classID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	var completed int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("class_id = ? AND status = ?", classID, models.EnrollmentStatusCompleted).
		Count(&completed).Error)
	require.Equal(t, int64(2), completed)

	// The closed class no longer accepts joins.
	resp = postJSON(t, app, "/api/v1/student/classes/join", map[string]interface{}{"invite_code": inviteCode})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
