package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// ScheduleHandler handles class session endpoints nested under a class.
type ScheduleHandler struct {
	schedules service.ScheduleService
	logger    zerolog.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules service.ScheduleService, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register wires routes for schedules.
func (h *ScheduleHandler) Register(router fiber.Router) {
	router.Get("/:id/schedule", h.list)
	router.Post("/:id/schedule", h.create)
	router.Patch("/:id/schedule/:scheduleId", h.update)
	router.Delete("/:id/schedule/:scheduleId", h.delete)
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	schedules, err := h.schedules.List(c.Context(), classID)
	if err != nil {
		return h.mapError(c, err, "failed to list schedule")
	}

	return utils.SendSuccess(c, "schedule retrieved", schedules)
}

func (h *ScheduleHandler) create(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.ScheduleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.schedules.Create(c.Context(), classID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrInvalidSessionTime) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to create schedule")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "schedule created", schedule)
}

func (h *ScheduleHandler) update(c *fiber.Ctx) error {
	scheduleID, err := parseIDParam(c, "scheduleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	var payload dto.ScheduleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	schedule, err := h.schedules.Update(c.Context(), scheduleID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrInvalidSessionTime) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to update schedule")
	}

	return utils.SendSuccess(c, "schedule updated", schedule)
}

func (h *ScheduleHandler) delete(c *fiber.Ctx) error {
	scheduleID, err := parseIDParam(c, "scheduleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	if err := h.schedules.Delete(c.Context(), scheduleID, userIDFromContext(c)); err != nil {
		return h.mapError(c, err, "failed to delete schedule")
	}

	return utils.SendSuccess(c, "schedule deleted", nil)
}

func (h *ScheduleHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrScheduleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "schedule not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
