package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// AdminClassHandler wires the admin class lifecycle endpoints.
// Response messages on this group are Vietnamese, matching the admin console.
type AdminClassHandler struct {
	classes service.ClassService
	logger  zerolog.Logger
}

// NewAdminClassHandler constructs the handler.
func NewAdminClassHandler(classes service.ClassService, logger zerolog.Logger) *AdminClassHandler {
	return &AdminClassHandler{
		classes: classes,
		logger:  logger.With().Str("component", "admin_class_handler").Logger(),
	}
}

// Register attaches admin class routes to the router group.
func (h *AdminClassHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/activate", h.activate)
	router.Post("/:id/complete", h.complete)
	router.Post("/:id/archive", h.archive)
}

func (h *AdminClassHandler) list(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, maxAdminPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Tham số phân trang không hợp lệ")
	}

	filter := repository.ClassFilter{
		Search:    c.Query("search"),
		Status:    models.ClassStatus(c.Query("status")),
		Level:     models.ClassLevel(c.Query("level")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}

	classes, total, err := h.classes.List(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list classes for admin")
		return utils.SendError(c, fiber.StatusInternalServerError, "Không thể tải danh sách lớp học")
	}

	return utils.SendPaginated(c, "Lấy danh sách lớp học thành công", classes, buildPagination(total, page, limit))
}

func (h *AdminClassHandler) activate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã lớp học không hợp lệ")
	}

	class, err := h.classes.Activate(c.Context(), id)
	if err != nil {
		return h.mapError(c, err, "Không thể kích hoạt lớp học")
	}

	return utils.SendSuccess(c, "Kích hoạt lớp học thành công", class)
}

func (h *AdminClassHandler) complete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã lớp học không hợp lệ")
	}

	class, err := h.classes.Complete(c.Context(), id)
	if err != nil {
		return h.mapError(c, err, "Không thể kết thúc lớp học")
	}

	return utils.SendSuccess(c, "Kết thúc lớp học thành công", class)
}

func (h *AdminClassHandler) archive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã lớp học không hợp lệ")
	}

	class, err := h.classes.Archive(c.Context(), id)
	if err != nil {
		return h.mapError(c, err, "Không thể lưu trữ lớp học")
	}

	return utils.SendSuccess(c, "Lưu trữ lớp học thành công", class)
}

func (h *AdminClassHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Không tìm thấy lớp học")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "Trạng thái lớp học không cho phép thao tác này")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
