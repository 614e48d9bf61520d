package handler_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

func TestStudentClassHandlerJoinByCode(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	class := seedClass(t, db, 7, models.ClassStatusActive, 10, "JOIN2345")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "JOIN2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.EnrollmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "joined class", body.Message)
	require.Equal(t, class.ID, body.Data.ClassID)
	require.Equal(t, uint(1), body.Data.StudentID)

	// Joining the same class twice conflicts.
	resp, err = app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "JOIN2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var conflict utils.APIResponse
	decodeResponse(t, resp, &conflict)
	require.Equal(t, "already enrolled in this class", conflict.Message)
}

func TestStudentClassHandlerJoinUnknownCode(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "NOPE2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "invalid invite code", body.Message)
}

func TestStudentClassHandlerJoinDraftClass(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	seedClass(t, db, 7, models.ClassStatusDraft, 10, "DFTJ2345")

	// Draft classes are invisible on the join path.
	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "DFTJ2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentClassHandlerPreview(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	seedClass(t, db, 7, models.ClassStatusActive, 12, "PREV2345")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/student/classes/preview/PREV2345", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                     `json:"success"`
		Data    dto.ClassPreviewResponse `json:"data"`
		Message string                   `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "VSTEP B2 Evening", body.Data.Name)
	require.Equal(t, int64(12), body.Data.SeatsLeft)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/student/classes/preview/MISSING1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentClassHandlerLeave(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	class := seedClass(t, db, 7, models.ClassStatusActive, 10, "LEAV2345")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "LEAV2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	leave := fmt.Sprintf("/api/v1/student/classes/%d/leave", class.ID)
	resp, err = app.Test(jsonRequest(t, "DELETE", leave, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "left class", body.Message)

	// Leaving again conflicts because the enrollment is already dropped.
	resp, err = app.Test(jsonRequest(t, "DELETE", leave, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestStudentClassHandlerListOwn(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	seedClass(t, db, 7, models.ClassStatusActive, 10, "LSTA2345")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "LSTA2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/student/classes", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                     `json:"success"`
		Data    []dto.EnrollmentResponse `json:"data"`
		Message string                   `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
	require.Equal(t, "active", body.Data[0].Status)
}

func TestStudentClassHandlerGetOwn(t *testing.T) {
	app, db := setupClassApp(t, "student")
	seedStudents(t, db, 1)
	class := seedClass(t, db, 7, models.ClassStatusActive, 10, "OWNC2345")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/student/classes/join", fiber.Map{"invite_code": "OWNC2345"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/v1/student/classes/%d", class.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                     `json:"success"`
		Data    dto.StudentClassResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, class.ID, body.Data.Class.ID)
	require.Empty(t, body.Data.Class.InviteCode)
	require.Equal(t, "active", body.Data.Enrollment.Status)

	// A class the student never joined is not visible.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/student/classes/4242", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentClassHandlerRejectsTeachers(t *testing.T) {
	app, _ := setupClassApp(t, "teacher")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/student/classes", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
