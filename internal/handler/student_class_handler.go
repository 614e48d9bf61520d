package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// StudentClassHandler handles the student-facing class endpoints.
type StudentClassHandler struct {
	classes     service.ClassService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewStudentClassHandler constructs the handler.
func NewStudentClassHandler(classes service.ClassService, enrollments service.EnrollmentService, logger zerolog.Logger) *StudentClassHandler {
	return &StudentClassHandler{
		classes:     classes,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "student_class_handler").Logger(),
	}
}

// Register wires the student class routes.
func (h *StudentClassHandler) Register(router fiber.Router) {
	router.Get("", h.listOwn)
	router.Get("/preview/:code", h.preview)
	router.Post("/join", h.join)
	router.Get("/:id", h.getOwn)
	router.Delete("/:id/leave", h.leave)
}

func (h *StudentClassHandler) listOwn(c *fiber.Ctx) error {
	enrollments, err := h.enrollments.ListStudentClasses(c.Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list student classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", enrollments)
}

// preview resolves an invite code into a reduced class view without joining.
func (h *StudentClassHandler) preview(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invite code required")
	}

	preview, err := h.classes.PreviewByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no joinable class for this code")
		}
		h.logger.Error().Err(err).Msg("failed to preview class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to preview class")
	}

	return utils.SendSuccess(c, "class preview", preview)
}

func (h *StudentClassHandler) getOwn(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	detail, err := h.enrollments.StudentClass(c.Context(), id, userIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		default:
			h.logger.Error().Err(err).Msg("failed to load student class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load class")
		}
	}

	return utils.SendSuccess(c, "class retrieved", detail)
}

func (h *StudentClassHandler) join(c *fiber.Ctx) error {
	var payload dto.JoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.enrollments.JoinByCode(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidInviteCode):
			return utils.SendError(c, fiber.StatusNotFound, "invalid invite code")
		case errors.Is(err, service.ErrClassFull):
			return utils.SendError(c, fiber.StatusConflict, "class is full")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			return utils.SendError(c, fiber.StatusConflict, "already enrolled in this class")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student profile not found")
		default:
			h.logger.Error().Err(err).Msg("failed to join class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to join class")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "joined class", enrollment)
}

func (h *StudentClassHandler) leave(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	if err := h.enrollments.Leave(c.Context(), id, userIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		case errors.Is(err, service.ErrNotActiveEnrollment):
			return utils.SendError(c, fiber.StatusConflict, "enrollment is not active")
		default:
			h.logger.Error().Err(err).Msg("failed to leave class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to leave class")
		}
	}

	return utils.SendSuccess(c, "left class", nil)
}
