package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const subjectPrefix = "forms"

type Type string

const (
	TypeFormPublished     Type = "form.published"
	TypeFormUnpublished   Type = "form.unpublished"
	TypeResponseSubmitted Type = "response.submitted"
)

type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       Type       `json:"type"`
	FormID     uuid.UUID  `json:"formId"`
	ActorID    uuid.UUID  `json:"actorId"`
	ResponseID *uuid.UUID `json:"responseId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func New(eventType Type, formID, actorID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		FormID:     formID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) Subject() string {
	return fmt.Sprintf("%s.%s", subjectPrefix, e.Type)
}

// Publisher is notified after a state change has been committed. Delivery is
// best effort: callers log failures and never roll back on them.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type conn interface {
	Publish(subject string, data []byte) error
}

type NatsPublisher struct {
	logger *zap.Logger
	tracer trace.Tracer
	conn   conn
}

// Connect dials the NATS server at url and returns a publisher bound to it
// together with a close function.
func Connect(logger *zap.Logger, url, name string) (*NatsPublisher, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", zap.Error(err))
		}
	}

	return NewNatsPublisher(logger, nc), closeFn, nil
}

func NewNatsPublisher(logger *zap.Logger, c conn) *NatsPublisher {
	return &NatsPublisher{
		logger: logger,
		tracer: otel.Tracer("event/publisher"),
		conn:   c,
	}
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) error {
	ctx, span := p.tracer.Start(ctx, "Publish")
	defer span.End()
	logger := logutil.WithContext(ctx, p.logger)

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.conn.Publish(e.Subject(), data)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}

	logger.Debug("Published event", zap.String("subject", e.Subject()), zap.String("event_id", e.ID.String()))
	return nil
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
