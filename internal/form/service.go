package form

import (
	"context"
	"errors"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/richtext"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Form, error)
	GetByID(ctx context.Context, id uuid.UUID) (Form, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ListByOwnerRow, error)
	Update(ctx context.Context, arg UpdateParams) (Form, error)
	SetPublished(ctx context.Context, arg SetPublishedParams) (Form, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type FieldLister interface {
	List(ctx context.Context, formID uuid.UUID) (field.Listing, error)
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (f Form) Status() Status {
	if f.IsPublished {
		return StatusPublished
	}
	return StatusDraft
}

// Detail is a form together with its fields in display order.
type Detail struct {
	Form
	Fields []field.FormField
	// FieldsComplete is false when the stored field list is corrupted and
	// Fields holds only its reachable prefix.
	FieldsComplete bool
}

// Patch holds the form attributes to change; nil members are left untouched.
type Patch struct {
	Title       *string
	Description *string
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	fields    FieldLister
	sanitizer *richtext.Sanitizer
}

func NewService(logger *zap.Logger, db DBTX, fields FieldLister, sanitizer *richtext.Sanitizer) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("forms/service"),
		fields:    fields,
		sanitizer: sanitizer,
	}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, title string, description *string) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"title":    title,
		"owner_id": ownerID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newForm, err := s.queries.Create(ctx, CreateParams{
		Title:       title,
		Description: s.description(description),
		OwnerID:     ownerID,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create form")
		span.RecordError(err)
		return Form{}, err
	}

	tracker.SuccessWrite(newForm.ID.String())

	return newForm, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ListByOwnerRow, error) {
	ctx, span := s.tracer.Start(ctx, "ListByOwner")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"owner_id": ownerID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "ListByOwner", dbParams)

	forms, err := s.queries.ListByOwner(ctx, ownerID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list forms by owner")
		span.RecordError(err)
		return []ListByOwnerRow{}, err
	}

	tracker.SuccessRead(len(forms), ownerID.String())

	if forms == nil {
		forms = []ListByOwnerRow{}
	}
	return forms, nil
}

// GetOwned returns a form of ownerID with its ordered fields. Forms of other
// owners are reported as not found.
func (s *Service) GetOwned(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) (Detail, error) {
	ctx, span := s.tracer.Start(ctx, "GetOwned")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	currentForm, err := s.get(ctx, logger, formID)
	if err != nil {
		span.RecordError(err)
		return Detail{}, err
	}

	if internal.RequireOwner(currentForm.OwnerID, ownerID) != nil {
		return Detail{}, internal.ErrFormNotFound
	}

	return s.withFields(ctx, span, currentForm)
}

// GetPublished returns a published form with its ordered fields. Unpublished
// forms are reported as not found.
func (s *Service) GetPublished(ctx context.Context, formID uuid.UUID) (Detail, error) {
	ctx, span := s.tracer.Start(ctx, "GetPublished")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	currentForm, err := s.get(ctx, logger, formID)
	if err != nil {
		span.RecordError(err)
		return Detail{}, err
	}

	if !currentForm.IsPublished {
		return Detail{}, internal.ErrFormNotFound
	}

	return s.withFields(ctx, span, currentForm)
}

func (s *Service) Update(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID, patch Patch) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.getForWrite(ctx, logger, formID, ownerID)
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	dbParams := map[string]interface{}{
		"id": formID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	var title pgtype.Text
	if patch.Title != nil {
		title = pgtype.Text{String: *patch.Title, Valid: true}
	}

	updated, err := s.queries.Update(ctx, UpdateParams{
		ID:          formID,
		Title:       title,
		Description: s.description(patch.Description),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Form{}, internal.ErrFormNotFound
		}
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update form")
		span.RecordError(err)
		return Form{}, err
	}

	tracker.SuccessWrite(formID.String())

	return updated, nil
}

// Delete removes the form. Its fields and responses are removed with it.
func (s *Service) Delete(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.getForWrite(ctx, logger, formID, ownerID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	dbParams := map[string]interface{}{
		"id": formID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Delete", dbParams)

	err = s.queries.Delete(ctx, formID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete form")
		span.RecordError(err)
		return err
	}
	tracker.SuccessWrite(formID.String())

	return nil
}

// SetPublished toggles whether respondents can submit to the form.
func (s *Service) SetPublished(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID, published bool) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "SetPublished")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.getForWrite(ctx, logger, formID, ownerID)
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	dbParams := map[string]interface{}{
		"id":           formID.String(),
		"is_published": published,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "SetPublished", dbParams)

	updated, err := s.queries.SetPublished(ctx, SetPublishedParams{ID: formID, IsPublished: published})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Form{}, internal.ErrFormNotFound
		}
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "set form published")
		span.RecordError(err)
		return Form{}, err
	}

	tracker.SuccessWrite(formID.String())

	return updated, nil
}

func (s *Service) get(ctx context.Context, logger *zap.Logger, formID uuid.UUID) (Form, error) {
	currentForm, err := s.queries.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Form{}, internal.ErrFormNotFound
		}
		return Form{}, databaseutil.WrapDBErrorWithKeyValue(err, "forms", "id", formID.String(), logger, "get form by id")
	}
	return currentForm, nil
}

// getForWrite loads the form and applies the ownership guard of the write path.
func (s *Service) getForWrite(ctx context.Context, logger *zap.Logger, formID uuid.UUID, callerID uuid.UUID) (Form, error) {
	currentForm, err := s.get(ctx, logger, formID)
	if err != nil {
		return Form{}, err
	}

	err = internal.RequireOwner(currentForm.OwnerID, callerID)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return Form{}, internal.ErrFormNotFound
		}
		logger.Warn("Rejected form write by non owner",
			zap.String("form_id", formID.String()),
			zap.String("caller_id", callerID.String()),
		)
		return Form{}, err
	}

	return currentForm, nil
}

func (s *Service) withFields(ctx context.Context, span trace.Span, currentForm Form) (Detail, error) {
	listing, err := s.fields.List(ctx, currentForm.ID)
	if err != nil {
		span.RecordError(err)
		return Detail{}, err
	}
	return Detail{Form: currentForm, Fields: listing.Fields, FieldsComplete: listing.Complete()}, nil
}

func (s *Service) description(description *string) pgtype.Text {
	if description == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s.sanitizer.Sanitize(*description), Valid: true}
}
