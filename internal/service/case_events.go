package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/observability"
)

// CaseEvent is broadcast after a case is registered, transitioned or removed.
type CaseEvent struct {
	ID            string            `json:"id"`
	Action        string            `json:"action"`
	CaseID        int               `json:"case_id"`
	Enrollment    string            `json:"enrollment_number,omitempty"`
	Kind          string            `json:"kind,omitempty"`
	Status        models.CaseStatus `json:"status,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// CaseEventPublisher fans case events out to redis and nats. Either transport
// may be absent.
type CaseEventPublisher struct {
	redis   *redis.Client
	channel string
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCaseEventPublisher builds a publisher. channel names the redis channel; the
// nats subject is derived from it with ':' replaced by '.'.
func NewCaseEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channel string, logger zerolog.Logger) *CaseEventPublisher {
	return &CaseEventPublisher{
		redis:   redisClient,
		channel: channel,
		nats:    natsConn,
		subject: strings.ReplaceAll(channel, ":", "."),
		logger:  logger.With().Str("component", "case_events").Logger(),
		now:     time.Now,
	}
}

// Publish sends an event for violation and logs delivery failures. A nil
// publisher is a no-op.
func (p *CaseEventPublisher) Publish(ctx context.Context, action string, violation models.Violation) error {
	if p == nil {
		return nil
	}

	event := CaseEvent{
		ID:            uuid.NewString(),
		Action:        action,
		CaseID:        violation.RecordID,
		Enrollment:    violation.Student.EnrollmentNumber,
		Status:        violation.CurrentStatus,
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		OccurredAt:    p.now().UTC(),
	}
	if violation.Details != nil {
		event.Kind = string(violation.Kind())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.channel != "" {
		if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.nats != nil && p.subject != "" {
		if err := p.nats.Publish(p.subject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Warn().
			Err(err).
			Str("action", action).
			Int("case_id", violation.RecordID).
			Str("correlation_id", event.CorrelationID).
			Msg("failed to publish case event")
		return err
	}
	return nil
}
