package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/aivt-api/internal/observability"
)

const (
	// CorrelationHeader carries the request correlation id in both directions.
	CorrelationHeader = "X-Correlation-ID"

	requestIDHeader   = "X-Request-ID"
	correlationLocal  = "correlation_id"
	maxCorrelationLen = 128
)

// CorrelationID tags each request with the caller's X-Correlation-ID or
// X-Request-ID, or a fresh uuid, echoes it back, and stores it on the user
// context so case events and service logs can carry it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)

		c.Locals(correlationLocal, id)
		c.Set(CorrelationHeader, id)
		c.SetUserContext(observability.ContextWithCorrelation(c.UserContext(), id))

		return c.Next()
	}
}

// GetCorrelationID returns the correlation id bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok {
		return id
	}
	return observability.CorrelationIDFromContext(c.UserContext())
}

// Oversized ids are replaced so a client cannot bloat every log line and event.
func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{CorrelationHeader, requestIDHeader} {
		id := strings.TrimSpace(c.Get(header))
		if id != "" && len(id) <= maxCorrelationLen {
			return id
		}
	}
	return uuid.NewString()
}
