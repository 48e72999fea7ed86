package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/observability"
	"github.com/skolara/skolara-api/internal/service"
	"github.com/skolara/skolara-api/internal/utils"
)

// GradingHandler manages grading endpoints for instructors.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	instructor := middleware.RequireRole(models.RoleInstructor)
	router.Post("/submissions/:id", instructor, h.grade)
	router.Post("/batch", instructor, h.gradeBatch)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Grade(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	observability.Grades().Inc()

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *GradingHandler) gradeBatch(c *fiber.Ctx) error {
	var payload dto.GradeBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(payload.Items) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "items must not be empty")
	}

	outcomes := h.service.GradeBatch(c.Context(), actorFromContext(c), payload)
	for _, outcome := range outcomes {
		if outcome.Success {
			observability.Grades().Inc()
		}
	}

	return utils.SendSuccess(c, "batch processed", outcomes)
}
