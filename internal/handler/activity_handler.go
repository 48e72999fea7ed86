package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/service"
	"github.com/skolara/skolara-api/internal/utils"
)

// ActivityHandler exposes the audit trail to instructors.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler builds an activity handler instance.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", middleware.RequireRole(models.RoleInstructor), h.recent)
}

func (h *ActivityHandler) recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	entries, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
