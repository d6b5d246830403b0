package field

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/database"
	"NYCU-SDC/form-engine-backend/internal/metrics"
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
	GetFormOwnership(ctx context.Context, id uuid.UUID) (GetFormOwnershipRow, error)
	BumpFieldRevision(ctx context.Context, arg BumpFieldRevisionParams) (int64, error)
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]FormField, error)
	GetByID(ctx context.Context, id uuid.UUID) (GetByIDRow, error)
	ExistsInForm(ctx context.Context, arg ExistsInFormParams) (bool, error)
	ListSuccessors(ctx context.Context, arg ListSuccessorsParams) ([]FormField, error)
	Create(ctx context.Context, arg CreateParams) (FormField, error)
	SetPrev(ctx context.Context, arg SetPrevParams) error
	UpdateContent(ctx context.Context, arg UpdateContentParams) (FormField, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn with a Querier bound to a single transaction that is
// committed only when fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type pgxTransactor struct {
	db database.Beginner
}

func (t pgxTransactor) InTx(ctx context.Context, fn func(q Querier) error) error {
	return database.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}

// Spec is the content of a new field.
type Spec struct {
	Name       string
	Label      *string
	ValueType  string
	Type       string
	Validation json.RawMessage
}

// Patch holds the content fields to change; nil members are left untouched.
type Patch struct {
	Name       *string
	Label      *string
	ValueType  *string
	Type       *string
	Validation json.RawMessage
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tx        Transactor
	tracer    trace.Tracer
	sanitizer *richtext.Sanitizer
	metrics   *metrics.Registry
}

func NewService(logger *zap.Logger, db database.Beginner, sanitizer *richtext.Sanitizer, registry *metrics.Registry) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tx:        pgxTransactor{db: db},
		tracer:    otel.Tracer("field/service"),
		sanitizer: sanitizer,
		metrics:   registry,
	}
}

// Listing is the ordered view of a form's fields. Total counts every stored
// field, so a Listing with fewer Fields than Total is a reachable prefix of a
// corrupted list.
type Listing struct {
	Fields []FormField
	Total  int
}

func (l Listing) Complete() bool {
	return len(l.Fields) == l.Total
}

// ListOrdered returns the fields of a form in display order. A corrupted list
// yields the reachable prefix and is reported, never repaired.
func (s *Service) ListOrdered(ctx context.Context, formID uuid.UUID) ([]FormField, error) {
	listing, err := s.List(ctx, formID)
	if err != nil {
		return nil, err
	}
	return listing.Fields, nil
}

// List is ListOrdered with the stored field count attached.
func (s *Service) List(ctx context.Context, formID uuid.UUID) (Listing, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.queries.GetFormOwnership(ctx, formID)
	if err != nil {
		err = s.mapFormError(err, logger, formID)
		span.RecordError(err)
		return Listing{}, err
	}

	fields, err := s.queries.ListByFormID(ctx, formID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "form_fields", "form_id", formID.String(), logger, "list fields by form id")
		span.RecordError(err)
		return Listing{}, err
	}

	listing := Listing{Fields: Order(fields), Total: len(fields)}
	if !listing.Complete() {
		s.metrics.FieldListCorrupted()
		logger.Warn("Field list is corrupted, returning reachable fields only",
			zap.String("form_id", formID.String()),
			zap.Int("field_count", listing.Total),
			zap.Int("ordered_count", len(listing.Fields)),
		)
	}

	return listing, nil
}

// Insert creates a field at the head of the form when afterFieldID is nil,
// otherwise directly after the given field.
func (s *Service) Insert(ctx context.Context, formID uuid.UUID, callerID uuid.UUID, spec Spec, afterFieldID *uuid.UUID) (FormField, error) {
	ctx, span := s.tracer.Start(ctx, "Insert")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"form_id":    formID.String(),
		"field_name": spec.Name,
		"caller_id":  callerID.String(),
	}
	if afterFieldID != nil {
		dbParams["after_field_id"] = afterFieldID.String()
	}
	tracker := logutil.StartDBOperation(ctx, logger, "InsertField", dbParams)

	prev := pgtype.UUID{Valid: false}
	if afterFieldID != nil {
		prev = pgtype.UUID{Bytes: *afterFieldID, Valid: true}
	}

	var created FormField
	err := s.tx.InTx(ctx, func(q Querier) error {
		err := s.lockStructure(ctx, q, logger, formID, callerID)
		if err != nil {
			return err
		}

		if afterFieldID != nil {
			exists, err := q.ExistsInForm(ctx, ExistsInFormParams{ID: *afterFieldID, FormID: formID})
			if err != nil {
				return databaseutil.WrapDBErrorWithTracker(err, tracker, "check previous field")
			}
			if !exists {
				return internal.ErrPrevFieldNotInForm
			}
		}

		successors, err := q.ListSuccessors(ctx, ListSuccessorsParams{FormID: formID, PrevFieldID: prev})
		if err != nil {
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "list successors")
		}
		if len(successors) > 1 {
			return s.corrupted(logger, formID, "insert position has more than one successor")
		}

		created, err = q.Create(ctx, CreateParams{
			FormID:         formID,
			FieldName:      spec.Name,
			Label:          s.label(spec.Label),
			FieldValueType: spec.ValueType,
			FieldType:      spec.Type,
			Validation:     validation(spec.Validation),
			PrevFieldID:    prev,
		})
		if err != nil {
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "create field")
		}

		if len(successors) == 1 {
			err = q.SetPrev(ctx, SetPrevParams{
				ID:          successors[0].ID,
				PrevFieldID: pgtype.UUID{Bytes: created.ID, Valid: true},
			})
			if err != nil {
				return databaseutil.WrapDBErrorWithTracker(err, tracker, "relink successor")
			}
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		return FormField{}, err
	}

	tracker.SuccessWrite(created.ID.String())
	s.metrics.FieldMutation("insert")

	return created, nil
}

// Update changes the content of a field. The predecessor link is never touched.
func (s *Service) Update(ctx context.Context, fieldID uuid.UUID, callerID uuid.UUID, patch Patch) (FormField, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.getOwned(ctx, logger, fieldID, callerID)
	if err != nil {
		span.RecordError(err)
		return FormField{}, err
	}

	dbParams := map[string]interface{}{
		"id":        fieldID.String(),
		"caller_id": callerID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "UpdateField", dbParams)

	updated, err := s.queries.UpdateContent(ctx, UpdateContentParams{
		ID:             fieldID,
		FieldName:      optionalText(patch.Name),
		Label:          s.label(patch.Label),
		FieldValueType: optionalText(patch.ValueType),
		FieldType:      optionalText(patch.Type),
		Validation:     validation(patch.Validation),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(internal.ErrFieldNotFound)
			return FormField{}, internal.ErrFieldNotFound
		}
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update field")
		span.RecordError(err)
		return FormField{}, err
	}

	tracker.SuccessWrite(fieldID.String())

	return updated, nil
}

// Delete removes a field and points its successor at the removed field's
// predecessor.
func (s *Service) Delete(ctx context.Context, fieldID uuid.UUID, callerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.getOwned(ctx, logger, fieldID, callerID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	dbParams := map[string]interface{}{
		"id":        fieldID.String(),
		"form_id":   target.FormID.String(),
		"caller_id": callerID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "DeleteField", dbParams)

	err = s.tx.InTx(ctx, func(q Querier) error {
		err := s.lockStructure(ctx, q, logger, target.FormID, callerID)
		if err != nil {
			return err
		}

		current, err := q.GetByID(ctx, fieldID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return internal.ErrFieldNotFound
			}
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "get field")
		}

		successors, err := q.ListSuccessors(ctx, ListSuccessorsParams{
			FormID:      current.FormID,
			PrevFieldID: pgtype.UUID{Bytes: current.ID, Valid: true},
		})
		if err != nil {
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "list successors")
		}
		if len(successors) > 1 {
			return s.corrupted(logger, current.FormID, "deleted field has more than one successor")
		}

		if len(successors) == 1 {
			err = q.SetPrev(ctx, SetPrevParams{ID: successors[0].ID, PrevFieldID: current.PrevFieldID})
			if err != nil {
				return databaseutil.WrapDBErrorWithTracker(err, tracker, "relink successor")
			}
		}

		err = q.Delete(ctx, fieldID)
		if err != nil {
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "delete field")
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(fieldID.String())
	s.metrics.FieldMutation("delete")

	return nil
}

// Swap exchanges the positions of two fields of the same form and rewrites the
// predecessor links to match the new order.
func (s *Service) Swap(ctx context.Context, firstID, secondID uuid.UUID, callerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Swap")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	first, err := s.getField(ctx, logger, firstID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	second, err := s.getField(ctx, logger, secondID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, f := range []GetByIDRow{first, second} {
		err = s.guard(f.OwnerID, callerID, internal.ErrFieldNotFound)
		if err != nil {
			span.RecordError(err)
			return err
		}
	}

	if first.FormID != second.FormID {
		span.RecordError(internal.ErrFieldsNotInSameForm)
		return internal.ErrFieldsNotInSameForm
	}

	if firstID == secondID {
		return nil
	}

	formID := first.FormID
	dbParams := map[string]interface{}{
		"form_id":   formID.String(),
		"first_id":  firstID.String(),
		"second_id": secondID.String(),
		"caller_id": callerID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "SwapFields", dbParams)

	err = s.tx.InTx(ctx, func(q Querier) error {
		err := s.lockStructure(ctx, q, logger, formID, callerID)
		if err != nil {
			return err
		}

		fields, err := q.ListByFormID(ctx, formID)
		if err != nil {
			return databaseutil.WrapDBErrorWithTracker(err, tracker, "list fields")
		}

		ordered := Order(fields)
		if len(ordered) != len(fields) {
			return s.corrupted(logger, formID, fmt.Sprintf("reconstructed %d of %d fields", len(ordered), len(fields)))
		}

		swapped, ok := SwapPositions(ordered, firstID, secondID)
		if !ok {
			return s.corrupted(logger, formID, "swapped field missing from reconstructed order")
		}

		current := make(map[uuid.UUID]pgtype.UUID, len(ordered))
		for _, f := range ordered {
			current[f.ID] = f.PrevFieldID
		}

		links := Relink(swapped)
		for _, f := range swapped {
			want := links[f.ID]
			if current[f.ID] == want {
				continue
			}
			err = q.SetPrev(ctx, SetPrevParams{ID: f.ID, PrevFieldID: want})
			if err != nil {
				return databaseutil.WrapDBErrorWithTracker(err, tracker, "rewrite field link")
			}
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(formID.String())
	s.metrics.FieldMutation("swap")

	return nil
}

// Inspect reports the structural health of a form's field list without
// changing it.
func (s *Service) Inspect(ctx context.Context, formID uuid.UUID) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "Inspect")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, err := s.queries.GetFormOwnership(ctx, formID)
	if err != nil {
		err = s.mapFormError(err, logger, formID)
		span.RecordError(err)
		return Report{}, err
	}

	fields, err := s.queries.ListByFormID(ctx, formID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "form_fields", "form_id", formID.String(), logger, "list fields by form id")
		span.RecordError(err)
		return Report{}, err
	}

	report := Inspect(formID, fields)
	if !report.Healthy() {
		s.metrics.FieldListCorrupted()
	}

	return report, nil
}

// lockStructure re-validates ownership inside the transaction and advances the
// form's field revision. A concurrent structural change makes the revision
// check fail and the transaction is abandoned with a conflict.
func (s *Service) lockStructure(ctx context.Context, q Querier, logger *zap.Logger, formID uuid.UUID, callerID uuid.UUID) error {
	owner, err := q.GetFormOwnership(ctx, formID)
	if err != nil {
		return s.mapFormError(err, logger, formID)
	}

	err = s.guard(owner.OwnerID, callerID, internal.ErrFormNotFound)
	if err != nil {
		return err
	}

	affected, err := q.BumpFieldRevision(ctx, BumpFieldRevisionParams{ID: formID, FieldRevision: owner.FieldRevision})
	if err != nil {
		return databaseutil.WrapDBError(err, logger, "bump field revision")
	}
	if affected == 0 {
		s.metrics.FieldOrderConflict()
		logger.Warn("Field order changed concurrently",
			zap.String("form_id", formID.String()),
			zap.Int64("expected_revision", owner.FieldRevision),
		)
		return internal.ErrFieldOrderConflict
	}

	return nil
}

func (s *Service) getField(ctx context.Context, logger *zap.Logger, fieldID uuid.UUID) (GetByIDRow, error) {
	row, err := s.queries.GetByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GetByIDRow{}, internal.ErrFieldNotFound
		}
		return GetByIDRow{}, databaseutil.WrapDBErrorWithKeyValue(err, "form_fields", "id", fieldID.String(), logger, "get field by id")
	}
	return row, nil
}

func (s *Service) getOwned(ctx context.Context, logger *zap.Logger, fieldID uuid.UUID, callerID uuid.UUID) (GetByIDRow, error) {
	row, err := s.getField(ctx, logger, fieldID)
	if err != nil {
		return GetByIDRow{}, err
	}

	err = s.guard(row.OwnerID, callerID, internal.ErrFieldNotFound)
	if err != nil {
		return GetByIDRow{}, err
	}

	return row, nil
}

// guard applies the shared ownership check, naming the missing resource.
func (s *Service) guard(ownerID, callerID uuid.UUID, notFound error) error {
	err := internal.RequireOwner(ownerID, callerID)
	if errors.Is(err, internal.ErrNotFound) {
		return notFound
	}
	return err
}

func (s *Service) mapFormError(err error, logger *zap.Logger, formID uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.ErrFormNotFound
	}
	return databaseutil.WrapDBErrorWithKeyValue(err, "forms", "id", formID.String(), logger, "get form ownership")
}

func (s *Service) corrupted(logger *zap.Logger, formID uuid.UUID, detail string) error {
	s.metrics.FieldListCorrupted()
	logger.Error("Field list is corrupted", zap.String("form_id", formID.String()), zap.String("detail", detail))
	return fmt.Errorf("%w: form %s: %s", internal.ErrFieldListCorrupted, formID, detail)
}

func (s *Service) label(label *string) pgtype.Text {
	if label == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s.sanitizer.Sanitize(*label), Valid: true}
}

func optionalText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *v, Valid: true}
}

func validation(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
