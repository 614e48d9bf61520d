package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/service"
	"github.com/noah-isme/vstep-go-api/internal/utils"
)

// SubmissionHandler handles student submission endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires routes for student submissions.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/assignments/:assignmentId/submissions", h.submit)
	router.Get("/assignments/:assignmentId/submissions/me", h.getOwn)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.Submit(c.Context(), assignmentID, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrAlreadySubmitted):
			return utils.SendError(c, fiber.StatusConflict, "assignment already submitted")
		case errors.Is(err, service.ErrNotEnrolledForAssignment):
			return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this class")
		default:
			h.logger.Error().Err(err).Msg("failed to submit assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit assignment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

func (h *SubmissionHandler) getOwn(c *fiber.Ctx) error {
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	submission, err := h.submissions.GetOwn(c.Context(), assignmentID, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		h.logger.Error().Err(err).Msg("failed to load submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}
