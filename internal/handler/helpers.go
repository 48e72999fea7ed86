package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/middleware"
	"github.com/skolara/skolara-api/internal/service"
	"github.com/skolara/skolara-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, err
	}
	result := uint(parsed)
	return &result, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			actor.ID = id
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			actor.Role = role
		}
	}
	return actor
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendDomainError maps domain error kinds onto HTTP statuses. Foreign errors
// become a 500 so nothing internal leaks to the client.
func sendDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	kind, ok := apperr.KindOf(err)
	if !ok {
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	message := apperr.MessageOf(err)
	code := kind.String()

	switch kind {
	case apperr.KindNotFound:
		return utils.SendErrorWithCode(c, fiber.StatusNotFound, code, message)
	case apperr.KindForbidden:
		return utils.SendErrorWithCode(c, fiber.StatusForbidden, code, message)
	case apperr.KindValidation:
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, code, message)
	case apperr.KindUnprocessable:
		return utils.SendErrorWithCode(c, fiber.StatusUnprocessableEntity, code, message)
	case apperr.KindConflict:
		return utils.SendErrorWithCode(c, fiber.StatusConflict, code, message)
	case apperr.KindTimeout:
		return utils.SendErrorWithCode(c, fiber.StatusGatewayTimeout, code, message)
	case apperr.KindUnavailable:
		return utils.SendErrorWithCode(c, fiber.StatusServiceUnavailable, code, message)
	default:
		requestLogger(logger, c).Error().Err(err).Msg("unmapped error kind")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
