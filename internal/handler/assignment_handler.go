package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// AssignmentHandler handles assignment endpoints nested under a class.
type AssignmentHandler struct {
	assignments service.AssignmentService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, submissions service.SubmissionService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register wires routes for assignments.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/:id/assignments", h.list)
	router.Post("/:id/assignments", h.create)
	router.Get("/:id/assignments/:assignmentId", h.get)
	router.Patch("/:id/assignments/:assignmentId", h.update)
	router.Delete("/:id/assignments/:assignmentId", h.delete)
	router.Get("/:id/assignments/:assignmentId/submissions", h.listSubmissions)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.AssignmentFilter{
		Search: c.Query("search"),
		Skill:  models.AssignmentSkill(c.Query("skill")),
		Sort:   c.Query("sort"),
		Page:   page,
		Limit:  limit,
	}

	assignments, total, err := h.assignments.List(c.Context(), classID, filter)
	if err != nil {
		return h.mapError(c, err, "failed to list assignments")
	}

	return utils.SendPaginated(c, "assignments retrieved", assignments, buildPagination(total, page, limit))
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Create(c.Context(), classID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to create assignment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	assignment, err := h.assignments.Get(c.Context(), assignmentID)
	if err != nil {
		return h.mapError(c, err, "failed to load assignment")
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Update(c.Context(), assignmentID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapError(c, err, "failed to update assignment")
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	if err := h.assignments.Delete(c.Context(), assignmentID, userIDFromContext(c)); err != nil {
		return h.mapError(c, err, "failed to delete assignment")
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) listSubmissions(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.SubmissionFilter{
		Status: models.SubmissionStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	submissions, total, err := h.submissions.ListByAssignment(c.Context(), assignmentID, userIDFromContext(c), filter)
	if err != nil {
		return h.mapError(c, err, "failed to list submissions")
	}

	return utils.SendPaginated(c, "submissions retrieved", submissions, buildPagination(total, page, limit))
}

func (h *AssignmentHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
