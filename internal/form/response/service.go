package response

import (
	"context"
	"errors"
	"fmt"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/database"
	"NYCU-SDC/form-engine-backend/internal/event"
	"NYCU-SDC/form-engine-backend/internal/form/answer"
	"NYCU-SDC/form-engine-backend/internal/form/shared"
	"NYCU-SDC/form-engine-backend/internal/metrics"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	StateDraft     = "draft"
	StateSubmitted = "submitted"
)

type Querier interface {
	GetForm(ctx context.Context, id uuid.UUID) (GetFormRow, error)
	GetByFormAndRespondent(ctx context.Context, arg GetByFormAndRespondentParams) (FormResponse, error)
	Upsert(ctx context.Context, arg UpsertParams) (FormResponse, error)
	ListSubmittedByFormID(ctx context.Context, formID uuid.UUID) ([]FormResponse, error)
	ListByRespondent(ctx context.Context, respondentID uuid.UUID) ([]ListByRespondentRow, error)
	ListFieldNames(ctx context.Context, formIds []uuid.UUID) ([]ListFieldNamesRow, error)
}

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

// Projected is a stored response whose answers are keyed by field name.
type Projected struct {
	ID           uuid.UUID
	FormID       uuid.UUID
	FormTitle    string
	RespondentID uuid.UUID
	Answers      shared.Answers
	IsSubmitted  bool
	SubmittedAt  pgtype.Timestamptz
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tx        Transactor
	tracer    trace.Tracer
	publisher event.Publisher
	metrics   *metrics.Registry
}

func NewService(logger *zap.Logger, db database.Beginner, publisher event.Publisher, registry *metrics.Registry) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tx:        pgxTransactor{db: db},
		tracer:    otel.Tracer("response/service"),
		publisher: publisher,
		metrics:   registry,
	}
}

// Submit finalizes the respondent's response to a published form. A submitted
// response is immutable, so a second submission fails.
func (s *Service) Submit(ctx context.Context, formID uuid.UUID, respondentID uuid.UUID, answers shared.Answers) (FormResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	saved, err := s.write(ctx, logger, formID, respondentID, answers, true)
	if err != nil {
		span.RecordError(err)
		return FormResponse{}, err
	}

	logger.Info("Submitted response",
		zap.String("form_id", formID.String()),
		zap.String("respondent_id", respondentID.String()),
		zap.String("response_id", saved.ID.String()),
	)

	e := event.New(event.TypeResponseSubmitted, formID, respondentID)
	e.ResponseID = &saved.ID
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish response submitted event", zap.Error(err), zap.String("response_id", saved.ID.String()))
	}

	return saved, nil
}

// SaveDraft stores answers without submitting. The form does not have to be
// published. Every save replaces the previous answers.
func (s *Service) SaveDraft(ctx context.Context, formID uuid.UUID, respondentID uuid.UUID, answers shared.Answers) (FormResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SaveDraft")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	saved, err := s.write(ctx, logger, formID, respondentID, answers, false)
	if err != nil {
		span.RecordError(err)
		return FormResponse{}, err
	}

	logger.Debug("Saved draft response",
		zap.String("form_id", formID.String()),
		zap.String("respondent_id", respondentID.String()),
	)

	return saved, nil
}

func (s *Service) write(ctx context.Context, logger *zap.Logger, formID uuid.UUID, respondentID uuid.UUID, answers shared.Answers, submit bool) (FormResponse, error) {
	encoded, err := answers.Encode()
	if err != nil {
		return FormResponse{}, fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
	}

	var saved FormResponse
	err = s.tx.InTx(ctx, func(q Querier) error {
		form, err := q.GetForm(ctx, formID)
		if err != nil {
			return s.mapFormError(err, logger, formID)
		}

		if submit && !form.IsPublished {
			s.metrics.ResponseRejected("not_published")
			return internal.ErrFormNotPublished
		}

		existing, err := q.GetByFormAndRespondent(ctx, GetByFormAndRespondentParams{FormID: formID, RespondentID: respondentID})
		switch {
		case err == nil && existing.IsSubmitted:
			s.metrics.ResponseRejected("already_submitted")
			return internal.ErrResponseAlreadySubmitted
		case err != nil && !errors.Is(err, pgx.ErrNoRows):
			return databaseutil.WrapDBErrorWithKeyValue(err, "form_responses", "form_id", formID.String(), logger, "get response by form and respondent")
		}

		saved, err = q.Upsert(ctx, UpsertParams{
			FormID:       formID,
			RespondentID: respondentID,
			Answers:      encoded,
			IsSubmitted:  submit,
		})
		if err != nil {
			// the conflict guard skipped the update: someone submitted first
			if errors.Is(err, pgx.ErrNoRows) {
				s.metrics.ResponseRejected("already_submitted")
				return internal.ErrResponseAlreadySubmitted
			}
			return databaseutil.WrapDBErrorWithKeyValue(err, "form_responses", "form_id", formID.String(), logger, "upsert response")
		}

		return nil
	})
	if err != nil {
		return FormResponse{}, err
	}

	if submit {
		s.metrics.ResponseWritten(StateSubmitted)
	} else {
		s.metrics.ResponseWritten(StateDraft)
	}

	return saved, nil
}

// GetDraft returns the respondent's own response only while it is a draft.
func (s *Service) GetDraft(ctx context.Context, formID uuid.UUID, respondentID uuid.UUID) (Projected, error) {
	ctx, span := s.tracer.Start(ctx, "GetDraft")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	result, err := s.getOwn(ctx, logger, formID, respondentID, false)
	if err != nil {
		span.RecordError(err)
		return Projected{}, err
	}

	return result, nil
}

// GetSubmitted returns the respondent's own response only once it is submitted.
func (s *Service) GetSubmitted(ctx context.Context, formID uuid.UUID, respondentID uuid.UUID) (Projected, error) {
	ctx, span := s.tracer.Start(ctx, "GetSubmitted")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	result, err := s.getOwn(ctx, logger, formID, respondentID, true)
	if err != nil {
		span.RecordError(err)
		return Projected{}, err
	}

	return result, nil
}

func (s *Service) getOwn(ctx context.Context, logger *zap.Logger, formID uuid.UUID, respondentID uuid.UUID, submitted bool) (Projected, error) {
	form, err := s.queries.GetForm(ctx, formID)
	if err != nil {
		return Projected{}, s.mapFormError(err, logger, formID)
	}

	row, err := s.queries.GetByFormAndRespondent(ctx, GetByFormAndRespondentParams{FormID: formID, RespondentID: respondentID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Projected{}, internal.ErrResponseNotFound
		}
		return Projected{}, databaseutil.WrapDBErrorWithKeyValue(err, "form_responses", "form_id", formID.String(), logger, "get response by form and respondent")
	}
	if row.IsSubmitted != submitted {
		return Projected{}, internal.ErrResponseNotFound
	}

	fields, err := s.fieldsByForm(ctx, logger, []uuid.UUID{formID})
	if err != nil {
		return Projected{}, err
	}

	return s.project(logger, row, form.Title, fields[formID])
}

// ListForOwner returns the submitted responses of a form owned by ownerID.
// Drafts are never visible to the owner. No submissions yields an empty slice.
func (s *Service) ListForOwner(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) ([]Projected, error) {
	ctx, span := s.tracer.Start(ctx, "ListForOwner")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	form, err := s.queries.GetForm(ctx, formID)
	if err != nil {
		err = s.mapFormError(err, logger, formID)
		span.RecordError(err)
		return nil, err
	}

	// other people's forms look absent on the read path
	if internal.RequireOwner(form.OwnerID, ownerID) != nil {
		return nil, internal.ErrFormNotFound
	}

	rows, err := s.queries.ListSubmittedByFormID(ctx, formID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "form_responses", "form_id", formID.String(), logger, "list submitted responses")
		span.RecordError(err)
		return nil, err
	}

	result := make([]Projected, 0, len(rows))
	if len(rows) == 0 {
		logger.Debug("No submitted responses", zap.String("form_id", formID.String()))
		return result, nil
	}

	fields, err := s.fieldsByForm(ctx, logger, []uuid.UUID{formID})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, row := range rows {
		p, err := s.project(logger, row, form.Title, fields[formID])
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		result = append(result, p)
	}

	return result, nil
}

// ListForRespondent returns every response of the respondent across forms,
// most recently updated first.
func (s *Service) ListForRespondent(ctx context.Context, respondentID uuid.UUID) ([]Projected, error) {
	ctx, span := s.tracer.Start(ctx, "ListForRespondent")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	rows, err := s.queries.ListByRespondent(ctx, respondentID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "form_responses", "respondent_id", respondentID.String(), logger, "list responses by respondent")
		span.RecordError(err)
		return nil, err
	}

	result := make([]Projected, 0, len(rows))
	if len(rows) == 0 {
		return result, nil
	}

	seen := make(map[uuid.UUID]bool, len(rows))
	formIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if !seen[row.FormID] {
			seen[row.FormID] = true
			formIDs = append(formIDs, row.FormID)
		}
	}

	fields, err := s.fieldsByForm(ctx, logger, formIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, row := range rows {
		p, err := s.project(logger, FormResponse{
			ID:           row.ID,
			FormID:       row.FormID,
			RespondentID: row.RespondentID,
			Answers:      row.Answers,
			IsSubmitted:  row.IsSubmitted,
			SubmittedAt:  row.SubmittedAt,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}, row.FormTitle, fields[row.FormID])
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		result = append(result, p)
	}

	return result, nil
}

func (s *Service) fieldsByForm(ctx context.Context, logger *zap.Logger, formIDs []uuid.UUID) (map[uuid.UUID][]answer.Field, error) {
	rows, err := s.queries.ListFieldNames(ctx, formIDs)
	if err != nil {
		return nil, databaseutil.WrapDBError(err, logger, "list field names")
	}

	fields := make(map[uuid.UUID][]answer.Field, len(formIDs))
	for _, row := range rows {
		fields[row.FormID] = append(fields[row.FormID], answer.Field{ID: row.ID, Name: row.FieldName})
	}
	return fields, nil
}

func (s *Service) project(logger *zap.Logger, row FormResponse, formTitle string, fields []answer.Field) (Projected, error) {
	answers, err := shared.DecodeAnswers(row.Answers)
	if err != nil {
		logger.Error("Stored answers are not valid", zap.String("response_id", row.ID.String()), zap.Error(err))
		return Projected{}, fmt.Errorf("%w: decode answers of response %s: %v", internal.ErrInternalServerError, row.ID, err)
	}

	return Projected{
		ID:           row.ID,
		FormID:       row.FormID,
		FormTitle:    formTitle,
		RespondentID: row.RespondentID,
		Answers:      answer.Project(answers, fields),
		IsSubmitted:  row.IsSubmitted,
		SubmittedAt:  row.SubmittedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *Service) mapFormError(err error, logger *zap.Logger, formID uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.ErrFormNotFound
	}
	return databaseutil.WrapDBErrorWithKeyValue(err, "forms", "id", formID.String(), logger, "get form")
}
