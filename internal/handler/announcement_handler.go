package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// AnnouncementHandler handles class feed endpoints nested under a class.
type AnnouncementHandler struct {
	announcements service.AnnouncementService
	logger        zerolog.Logger
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(announcements service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: announcements,
		logger:        logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register wires routes for announcements.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	router.Get("/:id/announcements", h.list)
	router.Post("/:id/announcements", h.create)
	router.Patch("/:id/announcements/:announcementId", h.update)
	router.Delete("/:id/announcements/:announcementId", h.delete)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.AnnouncementFilter{Page: page, Limit: limit}

	announcements, total, err := h.announcements.List(c.Context(), classID, filter)
	if err != nil {
		return h.mapError(c, err, "failed to list announcements")
	}

	return utils.SendPaginated(c, "announcements retrieved", announcements, buildPagination(total, page, limit))
}

func (h *AnnouncementHandler) create(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.announcements.Create(c.Context(), classID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrAnnouncementEmpty) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to create announcement")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement created", announcement)
}

func (h *AnnouncementHandler) update(c *fiber.Ctx) error {
	announcementID, err := parseIDParam(c, "announcementId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	var payload dto.AnnouncementUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.announcements.Update(c.Context(), announcementID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrAnnouncementEmpty) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to update announcement")
	}

	return utils.SendSuccess(c, "announcement updated", announcement)
}

func (h *AnnouncementHandler) delete(c *fiber.Ctx) error {
	announcementID, err := parseIDParam(c, "announcementId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	if err := h.announcements.Delete(c.Context(), announcementID, userIDFromContext(c)); err != nil {
		return h.mapError(c, err, "failed to delete announcement")
	}

	return utils.SendSuccess(c, "announcement deleted", nil)
}

func (h *AnnouncementHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrAnnouncementNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
