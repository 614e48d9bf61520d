package handler_test

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

func TestAdminClassHandlerLifecycle(t *testing.T) {
	app, db := setupClassApp(t, "admin")
	class := seedClass(t, db, 7, models.ClassStatusDraft, 10, "ADMN2345")

	resp, err := app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/admin/classes/%d/activate", class.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Data    dto.ClassResponse `json:"data"`
		Message string            `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Kích hoạt lớp học thành công", body.Message)
	require.Equal(t, "active", body.Data.Status)

	// Activating twice is not a valid transition.
	resp, err = app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/admin/classes/%d/activate", class.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var conflict utils.APIResponse
	decodeResponse(t, resp, &conflict)
	require.Equal(t, "Trạng thái lớp học không cho phép thao tác này", conflict.Message)

	resp, err = app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/admin/classes/%d/complete", class.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &body)
	require.Equal(t, "Kết thúc lớp học thành công", body.Message)
	require.Equal(t, "completed", body.Data.Status)

	resp, err = app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/admin/classes/%d/archive", class.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &body)
	require.Equal(t, "Lưu trữ lớp học thành công", body.Message)
	require.Equal(t, "archived", body.Data.Status)
}

func TestAdminClassHandlerActivateMissing(t *testing.T) {
	app, _ := setupClassApp(t, "admin")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/admin/classes/4242/activate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Không tìm thấy lớp học", body.Message)
}

func TestAdminClassHandlerList(t *testing.T) {
	app, db := setupClassApp(t, "admin")
	seedClass(t, db, 7, models.ClassStatusActive, 10, "ALST0001")
	seedClass(t, db, 8, models.ClassStatusDraft, 10, "ALST0002")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/classes?status=active", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success    bool                `json:"success"`
		Data       []dto.ClassResponse `json:"data"`
		Message    string              `json:"message"`
		Pagination *utils.Pagination   `json:"pagination"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Lấy danh sách lớp học thành công", body.Message)
	require.Len(t, body.Data, 1)
	require.Equal(t, int64(1), body.Pagination.Total)
}

func TestAdminClassHandlerRejectsTeachers(t *testing.T) {
	app, _ := setupClassApp(t, "teacher")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/classes", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func seedSubmission(t *testing.T, db *gorm.DB, maxScore float64) models.Submission {
	t.Helper()
	class := seedClass(t, db, 7, models.ClassStatusActive, 10, fmt.Sprintf("GRD%05d", handlerDBCounter))
	seedStudents(t, db, 1)
	assignment := models.Assignment{
		ClassID: class.ID, Title: "Writing Task 2", Skill: models.AssignmentSkillWriting,
		DueDate: time.Now().Add(48 * time.Hour), MaxScore: maxScore,
	}
	require.NoError(t, db.Create(&assignment).Error)
	submission := models.Submission{
		AssignmentID: assignment.ID, StudentID: 1,
		Answers: datatypes.JSON([]byte(`{}`)), Status: models.SubmissionStatusPending,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func TestAdminGradingHandlerGrade(t *testing.T) {
	app, db := setupClassApp(t, "admin")
	submission := seedSubmission(t, db, 10)

	target := fmt.Sprintf("/api/admin/submissions/%d/grade", submission.ID)
	resp, err := app.Test(jsonRequest(t, "POST", target, fiber.Map{"grade": 8.5, "feedback": "Bài viết tốt"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Chấm điểm thành công", body.Message)
	require.Equal(t, "graded", body.Data.Status)
	require.NotNil(t, body.Data.Grade)
	require.InDelta(t, 8.5, *body.Data.Grade, 1e-9)
	require.NotNil(t, body.Data.GradedBy)
	require.Equal(t, uint(1), *body.Data.GradedBy)
}

func TestAdminGradingHandlerStartGrading(t *testing.T) {
	app, db := setupClassApp(t, "admin")
	submission := seedSubmission(t, db, 10)

	target := fmt.Sprintf("/api/admin/submissions/%d/start-grading", submission.ID)
	resp, err := app.Test(jsonRequest(t, "POST", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Bắt đầu chấm điểm thành công", body.Message)
	require.Equal(t, "grading", body.Data.Status)

	resp, err = app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/admin/submissions/%d/grade", submission.ID), fiber.Map{"grade": 7, "feedback": "Khá tốt"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &body)
	require.Equal(t, "graded", body.Data.Status)

	// Starting over on a graded submission conflicts.
	resp, err = app.Test(jsonRequest(t, "POST", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var conflict utils.APIResponse
	decodeResponse(t, resp, &conflict)
	require.Equal(t, "Bài nộp đã được chấm điểm", conflict.Message)
}

func TestAdminGradingHandlerScoreTooHigh(t *testing.T) {
	app, db := setupClassApp(t, "admin")
	submission := seedSubmission(t, db, 10)

	target := fmt.Sprintf("/api/admin/submissions/%d/grade", submission.ID)
	resp, err := app.Test(jsonRequest(t, "POST", target, fiber.Map{"grade": 11}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Điểm vượt quá thang điểm của bài tập", body.Message)
}

func TestAdminGradingHandlerMissingSubmission(t *testing.T) {
	app, _ := setupClassApp(t, "admin")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/admin/submissions/4242/grade", fiber.Map{"grade": 5}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body utils.APIResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Không tìm thấy bài nộp", body.Message)
}
