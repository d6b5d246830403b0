package response

import (
	"net/http"
	"time"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form/shared"
	"NYCU-SDC/form-engine-backend/internal/user"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const noResponsesMessage = "No responses found for this form"

type AnswersRequest struct {
	Answers shared.Answers `json:"answers" validate:"required"`
}

// Response is a stored response with answers keyed by field id.
type Response struct {
	ID           uuid.UUID      `json:"id"`
	FormID       uuid.UUID      `json:"formId"`
	RespondentID uuid.UUID      `json:"respondentId"`
	Answers      shared.Answers `json:"answers"`
	IsSubmitted  bool           `json:"isSubmitted"`
	SubmittedAt  *time.Time     `json:"submittedAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ProjectedResponse is a response with answers keyed by field name.
type ProjectedResponse struct {
	ID           uuid.UUID      `json:"id"`
	FormID       uuid.UUID      `json:"formId"`
	FormTitle    string         `json:"formTitle"`
	RespondentID uuid.UUID      `json:"respondentId"`
	Answers      shared.Answers `json:"answers"`
	IsSubmitted  bool           `json:"isSubmitted"`
	SubmittedAt  *time.Time     `json:"submittedAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type OwnerListResponse struct {
	Message   string              `json:"message,omitempty"`
	Responses []ProjectedResponse `json:"responses"`
}

func ToResponse(r FormResponse, answers shared.Answers) Response {
	return Response{
		ID:           r.ID,
		FormID:       r.FormID,
		RespondentID: r.RespondentID,
		Answers:      answers,
		IsSubmitted:  r.IsSubmitted,
		SubmittedAt:  timePtr(r.SubmittedAt),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func ToProjectedResponse(p Projected) ProjectedResponse {
	answers := p.Answers
	if answers == nil {
		answers = shared.Answers{}
	}
	return ProjectedResponse{
		ID:           p.ID,
		FormID:       p.FormID,
		FormTitle:    p.FormTitle,
		RespondentID: p.RespondentID,
		Answers:      answers,
		IsSubmitted:  p.IsSubmitted,
		SubmittedAt:  timePtr(p.SubmittedAt),
		UpdatedAt:    p.UpdatedAt.Time,
	}
}

func toProjectedResponses(list []Projected) []ProjectedResponse {
	result := make([]ProjectedResponse, 0, len(list))
	for _, p := range list {
		result = append(result, ToProjectedResponse(p))
	}
	return result
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	service *Service
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	service *Service,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("response/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		service:       service,
	}
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	var req AnswersRequest
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	saved, err := h.service.Submit(ctx, formID, currentUser.ID, req.Answers)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(saved, req.Answers))
}

func (h *Handler) SaveDraftHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SaveDraftHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	var req AnswersRequest
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	saved, err := h.service.SaveDraft(ctx, formID, currentUser.ID, req.Answers)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(saved, req.Answers))
}

func (h *Handler) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetDraftHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	draft, err := h.service.GetDraft(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToProjectedResponse(draft))
}

func (h *Handler) GetSubmittedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetSubmittedHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	submitted, err := h.service.GetSubmitted(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToProjectedResponse(submitted))
}

func (h *Handler) ListForOwnerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListForOwnerHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	list, err := h.service.ListForOwner(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	response := OwnerListResponse{Responses: toProjectedResponses(list)}
	if len(list) == 0 {
		response.Message = noResponsesMessage
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) ListForRespondentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListForRespondentHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	list, err := h.service.ListForRespondent(ctx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, toProjectedResponses(list))
}
