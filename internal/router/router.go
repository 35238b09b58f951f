package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/aivt-api/internal/config"
	"github.com/noah-isme/aivt-api/internal/handler"
	"github.com/noah-isme/aivt-api/internal/middleware"
	"github.com/noah-isme/aivt-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CaseHandler   *handler.CaseHandler
	ReportHandler *handler.ReportHandler
	SeedHandler   *handler.SeedHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.CaseHandler != nil {
		writeLimiter := middleware.RateLimit("cases", cfg.RateLimitMax, cfg.RateLimitWindow)
		deps.CaseHandler.Register(api.Group("/cases"), writeLimiter)
	}

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reports"))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
