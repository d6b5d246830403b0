package form

import (
	"net/http"
	"time"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/user"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Request struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
}

type PatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type Response struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Status      string    `json:"status"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DetailResponse struct {
	Response
	Fields            []field.Response `json:"fields"`
	FieldListComplete bool             `json:"fieldListComplete"`
}

type SummaryResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	IsPublished    bool      `json:"isPublished"`
	SubmittedCount int64     `json:"submittedCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// statusToUppercase converts the internal status to the API format.
func statusToUppercase(s Status) string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPublished:
		return "PUBLISHED"
	default:
		return string(s)
	}
}

func ToResponse(form Form) Response {
	return Response{
		ID:          form.ID,
		Title:       form.Title,
		Description: form.Description.String,
		OwnerID:     form.OwnerID,
		Status:      statusToUppercase(form.Status()),
		IsPublished: form.IsPublished,
		CreatedAt:   form.CreatedAt.Time,
		UpdatedAt:   form.UpdatedAt.Time,
	}
}

func ToDetailResponse(detail Detail) DetailResponse {
	fields := make([]field.Response, 0, len(detail.Fields))
	for _, f := range detail.Fields {
		fields = append(fields, field.ToResponse(f))
	}
	return DetailResponse{
		Response:          ToResponse(detail.Form),
		Fields:            fields,
		FieldListComplete: detail.FieldsComplete,
	}
}

func ToSummaryResponse(row ListByOwnerRow) SummaryResponse {
	status := StatusDraft
	if row.IsPublished {
		status = StatusPublished
	}
	return SummaryResponse{
		ID:             row.ID,
		Title:          row.Title,
		Description:    row.Description.String,
		Status:         statusToUppercase(status),
		IsPublished:    row.IsPublished,
		SubmittedCount: row.SubmittedCount,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
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
		tracer:        otel.Tracer("forms/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		service:       service,
	}
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	forms, err := h.service.ListByOwner(ctx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	response := make([]SummaryResponse, 0, len(forms))
	for _, f := range forms {
		response = append(response, ToSummaryResponse(f))
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	newForm, err := h.service.Create(ctx, currentUser.ID, req.Title, req.Description)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(newForm))
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetHandler")
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

	detail, err := h.service.GetOwned(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToDetailResponse(detail))
}

func (h *Handler) GetPublicHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetPublicHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	detail, err := h.service.GetPublished(ctx, formID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToDetailResponse(detail))
}

func (h *Handler) PatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PatchHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	var req PatchRequest
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	updated, err := h.service.Update(ctx, formID, currentUser.ID, Patch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteHandler")
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

	if err := h.service.Delete(ctx, formID, currentUser.ID); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}
