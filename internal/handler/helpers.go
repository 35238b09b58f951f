package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/middleware"
	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
	"github.com/noah-isme/aivt-api/internal/utils"
)

func parseCaseID(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(strings.TrimSpace(c.Params("id")))
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

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps domain errors to HTTP responses. data is returned with
// persistence failures so clients can see the change that was kept in memory.
func sendServiceError(c *fiber.Ctx, base zerolog.Logger, err error, data interface{}) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", dto.ValidationDetails(err))
	case errors.Is(err, models.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCaseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "case not found")
	case errors.Is(err, repository.ErrStoreMissing):
		return utils.SendError(c, fiber.StatusNotFound, "case store does not exist")
	case errors.Is(err, repository.ErrBackupUnsupported):
		return utils.SendError(c, fiber.StatusNotImplemented, "backup is only supported for sqlite stores")
	case errors.Is(err, repository.ErrPersistenceFailure):
		requestLogger(base, c).Error().Err(err).Msg("case store write failed")
		if data != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.APIResponse{
				Success: false,
				Data:    data,
				Message: "change applied but could not be saved",
			})
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "storage operation failed")
	default:
		requestLogger(base, c).Error().Err(err).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
