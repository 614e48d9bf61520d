package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// ReportHandler wires the admin reporting endpoints.
type ReportHandler struct {
	reports service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/overview", h.overview)
	router.Get("/classes/:id", h.classReport)
}

func (h *ReportHandler) overview(c *fiber.Ctx) error {
	overview, err := h.reports.Overview(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build overview report")
		return utils.SendError(c, fiber.StatusInternalServerError, "Không thể tạo báo cáo tổng quan")
	}

	if overview.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "Lấy báo cáo tổng quan thành công", overview)
}

func (h *ReportHandler) classReport(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Mã lớp học không hợp lệ")
	}

	report, err := h.reports.ClassReport(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Không tìm thấy lớp học")
		}
		h.logger.Error().Err(err).Msg("failed to build class report")
		return utils.SendError(c, fiber.StatusInternalServerError, "Không thể tạo báo cáo lớp học")
	}

	return utils.SendSuccess(c, "Lấy báo cáo lớp học thành công", report)
}
