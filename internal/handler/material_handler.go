package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// MaterialHandler handles study-material endpoints nested under a class.
type MaterialHandler struct {
	materials service.MaterialService
	logger    zerolog.Logger
}

// NewMaterialHandler constructs the handler.
func NewMaterialHandler(materials service.MaterialService, logger zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		materials: materials,
		logger:    logger.With().Str("component", "material_handler").Logger(),
	}
}

// Register wires routes for materials.
func (h *MaterialHandler) Register(router fiber.Router) {
	router.Get("/:id/materials", h.list)
	router.Post("/:id/materials", h.upload)
	router.Patch("/:id/materials/:materialId", h.update)
	router.Delete("/:id/materials/:materialId", h.delete)
	router.Get("/:id/materials/:materialId/download", h.download)
}

func (h *MaterialHandler) list(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.MaterialFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	materials, total, err := h.materials.List(c.Context(), classID, filter)
	if err != nil {
		return h.mapError(c, err, "failed to list materials")
	}

	return utils.SendPaginated(c, "materials retrieved", materials, buildPagination(total, page, limit))
}

func (h *MaterialHandler) upload(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.MaterialCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}

	material, err := h.materials.Upload(c.Context(), classID, userIDFromContext(c), payload, fileHeader.Filename, content)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMaterialTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum size")
		case errors.Is(err, service.ErrUnsupportedFileType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "unsupported file type")
		default:
			return h.mapError(c, err, "failed to upload material")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "material uploaded", material)
}

func (h *MaterialHandler) update(c *fiber.Ctx) error {
	materialID, err := parseIDParam(c, "materialId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	var payload dto.MaterialUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	material, err := h.materials.Update(c.Context(), materialID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to update material")
	}

	return utils.SendSuccess(c, "material updated", material)
}

func (h *MaterialHandler) delete(c *fiber.Ctx) error {
	materialID, err := parseIDParam(c, "materialId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	if err := h.materials.Delete(c.Context(), materialID, userIDFromContext(c)); err != nil {
		return h.mapError(c, err, "failed to delete material")
	}

	return utils.SendSuccess(c, "material deleted", nil)
}

// download returns the material metadata with its URL and counts the hit.
func (h *MaterialHandler) download(c *fiber.Ctx) error {
	materialID, err := parseIDParam(c, "materialId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	material, err := h.materials.Download(c.Context(), materialID)
	if err != nil {
		return h.mapError(c, err, "failed to download material")
	}

	return utils.SendSuccess(c, "material download", material)
}

func (h *MaterialHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrMaterialNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "material not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
