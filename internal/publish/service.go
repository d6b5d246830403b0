package publish

import (
	"context"

	"NYCU-SDC/form-engine-backend/internal/event"
	"NYCU-SDC/form-engine-backend/internal/form"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type FormStore interface {
	SetPublished(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID, published bool) (form.Form, error)
}

type Service struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	store     FormStore
	publisher event.Publisher
}

func NewService(logger *zap.Logger, store FormStore, publisher event.Publisher) *Service {
	return &Service{
		logger:    logger,
		tracer:    otel.Tracer("publish/service"),
		store:     store,
		publisher: publisher,
	}
}

// PublishForm opens the form for submissions.
func (s *Service) PublishForm(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) (form.Form, error) {
	ctx, span := s.tracer.Start(ctx, "PublishForm")
	defer span.End()

	updated, err := s.setPublished(ctx, formID, ownerID, true, event.TypeFormPublished)
	if err != nil {
		span.RecordError(err)
		return form.Form{}, err
	}
	return updated, nil
}

// UnpublishForm closes the form. Stored responses and drafts are kept.
func (s *Service) UnpublishForm(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) (form.Form, error) {
	ctx, span := s.tracer.Start(ctx, "UnpublishForm")
	defer span.End()

	updated, err := s.setPublished(ctx, formID, ownerID, false, event.TypeFormUnpublished)
	if err != nil {
		span.RecordError(err)
		return form.Form{}, err
	}
	return updated, nil
}

func (s *Service) setPublished(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID, published bool, eventType event.Type) (form.Form, error) {
	logger := logutil.WithContext(ctx, s.logger)

	updated, err := s.store.SetPublished(ctx, formID, ownerID, published)
	if err != nil {
		return form.Form{}, err
	}

	logger.Info("Form publish state changed",
		zap.String("form_id", formID.String()),
		zap.String("editor", ownerID.String()),
		zap.Bool("is_published", published),
	)

	if err := s.publisher.Publish(ctx, event.New(eventType, formID, ownerID)); err != nil {
		logger.Warn("Failed to publish form event", zap.Error(err), zap.String("type", string(eventType)))
	}

	return updated, nil
}
