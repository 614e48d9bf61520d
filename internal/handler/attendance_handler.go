package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// AttendanceHandler handles attendance endpoints nested under a class.
type AttendanceHandler struct {
	attendance service.AttendanceService
	logger     zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		logger:     logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register wires routes for attendance.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Get("/:id/attendance", h.list)
	router.Post("/:id/attendance", h.record)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.AttendanceFilter{Page: page, Limit: limit}

	if raw := c.Query("student_id"); raw != "" {
		studentID, err := parseQueryInt(c, "student_id")
		if err != nil || studentID <= 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
		}
		filter.StudentID = uint(studentID)
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid date")
		}
		filter.Date = &date
	}

	records, total, err := h.attendance.List(c.Context(), classID, filter)
	if err != nil {
		return h.mapError(c, err, "failed to list attendance")
	}

	return utils.SendPaginated(c, "attendance retrieved", records, buildPagination(total, page, limit))
}

func (h *AttendanceHandler) record(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.AttendanceBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	records, err := h.attendance.Record(c.Context(), classID, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStudentNotInClass):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		default:
			return h.mapError(c, err, "failed to record attendance")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance recorded", records)
}

func (h *AttendanceHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
