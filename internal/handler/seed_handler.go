package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/service"
	"github.com/noah-isme/aivt-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for loading sample data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/samples", h.samples)
}

func (h *SeedHandler) samples(c *fiber.Ctx) error {
	inserted, err := h.service.SeedSampleCases(c.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrSeedDisabled) {
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		}
		if errors.Is(err, service.ErrAlreadySeeded) {
			return utils.SendError(c, fiber.StatusConflict, "case data already present")
		}
		return sendServiceError(c, h.logger, err, fiber.Map{"inserted": inserted})
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sample cases seeded", fiber.Map{"inserted": inserted})
}
