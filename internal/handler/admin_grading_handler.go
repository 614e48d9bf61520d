package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// AdminGradingHandler wires the grading endpoint on the admin group.
type AdminGradingHandler struct {
	grading service.GradingService
	logger  zerolog.Logger
}

// NewAdminGradingHandler constructs the handler.
func NewAdminGradingHandler(grading service.GradingService, logger zerolog.Logger) *AdminGradingHandler {
	return &AdminGradingHandler{
		grading: grading,
		logger:  logger.With().Str("component", "admin_grading_handler").Logger(),
	}
}

// Register attaches grading routes to the router group.
func (h *AdminGradingHandler) Register(router fiber.Router) {
	router.Post("/submissions/:id/start-grading", h.startGrading)
	router.Post("/submissions/:id/grade", h.grade)
}

func (h *AdminGradingHandler) startGrading(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã bài nộp không hợp lệ")
	}

	submission, err := h.grading.StartGrading(c.Context(), id, userIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Không tìm thấy bài nộp")
		case errors.Is(err, service.ErrSubmissionAlreadyGraded):
			return utils.SendError(c, fiber.StatusConflict, "Bài nộp đã được chấm điểm")
		default:
			h.logger.Error().Err(err).Msg("failed to start grading")
			return utils.SendError(c, fiber.StatusInternalServerError, "Không thể bắt đầu chấm điểm")
		}
	}

	return utils.SendSuccess(c, "Bắt đầu chấm điểm thành công", submission)
}

func (h *AdminGradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã bài nộp không hợp lệ")
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
	}

	submission, err := h.grading.Grade(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Không tìm thấy bài nộp")
		case errors.Is(err, service.ErrScoreExceedsMax):
			return utils.SendError(c, fiber.StatusBadRequest, "Điểm vượt quá thang điểm của bài tập")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "Không thể chấm điểm bài nộp")
		}
	}

	return utils.SendSuccess(c, "Chấm điểm thành công", submission)
}
