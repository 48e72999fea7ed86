package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/service"
	"github.com/skolara/skolara-api/internal/utils"
)

// GradebookHandler exposes a learner's aggregate course grade.
type GradebookHandler struct {
	service service.GradebookService
	logger  zerolog.Logger
}

// NewGradebookHandler builds a gradebook handler instance.
func NewGradebookHandler(service service.GradebookService, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		service: service,
		logger:  logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/courses/:courseId", middleware.RequireRole(models.RoleLearner), h.courseGrade)
}

func (h *GradebookHandler) courseGrade(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	grade, err := h.service.ComputeCourseGrade(c.Context(), actorFromContext(c), courseID)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course grade computed", grade)
}
