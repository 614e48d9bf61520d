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

// ClassHandler handles the teacher-facing class registry endpoints.
type ClassHandler struct {
	classes     service.ClassService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(classes service.ClassService, enrollments service.EnrollmentService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classes:     classes,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register wires routes for class management.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/invite-code", h.regenerateInviteCode)

	router.Get("/:id/students", h.listStudents)
	router.Post("/:id/students", h.enroll)
	router.Post("/:id/students/bulk", h.bulkEnroll)
	router.Patch("/:id/students/:studentId", h.updateEnrollment)
	router.Delete("/:id/students/:studentId", h.removeStudent)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.ClassFilter{
		Search:    c.Query("search"),
		Status:    models.ClassStatus(c.Query("status")),
		Level:     models.ClassLevel(c.Query("level")),
		TeacherID: userIDFromContext(c),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}

	classes, total, err := h.classes.List(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendPaginated(c, "classes retrieved", classes, buildPagination(total, page, limit))
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.classes.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	class, err := h.classes.Get(c.Context(), id)
	if err != nil {
		return h.mapClassError(c, err, "failed to load class")
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.ClassUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.classes.Update(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapClassError(c, err, "failed to update class")
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *ClassHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	if err := h.classes.Delete(c.Context(), id, userIDFromContext(c)); err != nil {
		if errors.Is(err, service.ErrClassHasActiveStudents) {
			return utils.SendError(c, fiber.StatusConflict, "class still has active enrollments")
		}
		return h.mapClassError(c, err, "failed to delete class")
	}

	return utils.SendSuccess(c, "class deleted", nil)
}

func (h *ClassHandler) regenerateInviteCode(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	class, err := h.classes.RegenerateInviteCode(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.mapClassError(c, err, "failed to regenerate invite code")
	}

	return utils.SendSuccess(c, "invite code regenerated", class)
}

func (h *ClassHandler) listStudents(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	page, limit, err := parsePagination(c, maxPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.EnrollmentFilter{
		Status: models.EnrollmentStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	students, total, err := h.enrollments.ListStudents(c.Context(), id, filter)
	if err != nil {
		return h.mapEnrollmentError(c, err, "failed to list students")
	}

	return utils.SendPaginated(c, "students retrieved", students, buildPagination(total, page, limit))
}

func (h *ClassHandler) enroll(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.EnrollRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.enrollments.Enroll(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapEnrollmentError(c, err, "failed to enroll student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student enrolled", enrollment)
}

func (h *ClassHandler) bulkEnroll(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.BulkEnrollRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.enrollments.BulkEnroll(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapEnrollmentError(c, err, "failed to enroll students")
	}

	return utils.SendSuccess(c, "bulk enrollment processed", result)
}

func (h *ClassHandler) updateEnrollment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.EnrollmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.enrollments.UpdateEnrollment(c.Context(), id, studentID, userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.mapEnrollmentError(c, err, "failed to update enrollment")
	}

	return utils.SendSuccess(c, "enrollment updated", enrollment)
}

func (h *ClassHandler) removeStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.enrollments.Remove(c.Context(), id, studentID, userIDFromContext(c)); err != nil {
		return h.mapEnrollmentError(c, err, "failed to remove student")
	}

	return utils.SendSuccess(c, "student removed", nil)
}

func (h *ClassHandler) mapClassError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "invalid class status transition")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func (h *ClassHandler) mapEnrollmentError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrClassNotOwned):
		return utils.SendError(c, fiber.StatusForbidden, "class does not belong to you")
	case errors.Is(err, service.ErrClassNotJoinable):
		return utils.SendError(c, fiber.StatusConflict, "class is not accepting enrollments")
	case errors.Is(err, service.ErrClassFull):
		return utils.SendError(c, fiber.StatusConflict, "class is full")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return utils.SendError(c, fiber.StatusConflict, "student already enrolled")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrNotActiveEnrollment):
		return utils.SendError(c, fiber.StatusConflict, "enrollment is not active")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
