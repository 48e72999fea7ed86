package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/service"
	"github.com/skolara/skolara-api/internal/utils"
)

// EnrollmentHandler manages a learner's course memberships.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler builds an enrollment handler instance.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	learner := middleware.RequireRole(models.RoleLearner)
	router.Get("", learner, h.listMine)
	router.Post("/courses/:courseId", learner, h.enroll)
	router.Delete("/courses/:courseId", learner, h.unenroll)
}

func (h *EnrollmentHandler) listMine(c *fiber.Ctx) error {
	actor := actorFromContext(c)

	enrollments, err := h.service.ListForLearner(c.Context(), actor.ID)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	enrollment, err := h.service.Enroll(c.Context(), actorFromContext(c), courseID)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *EnrollmentHandler) unenroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := h.service.Unenroll(c.Context(), actorFromContext(c), courseID); err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "unenrolled", nil)
}
