package field

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"NYCU-SDC/form-engine-backend/internal"
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

// List responses carry the stored field count so clients can tell a
// truncated, corrupted list from a complete one.
const (
	HeaderFieldCount        = "X-Field-Count"
	HeaderFieldListComplete = "X-Field-List-Complete"
)

type InsertRequest struct {
	FieldName      string          `json:"fieldName" validate:"required,field_name"`
	Label          *string         `json:"label"`
	FieldValueType string          `json:"fieldValueType" validate:"required"`
	FieldType      string          `json:"fieldType" validate:"required"`
	Validation     json.RawMessage `json:"validation"`
	AfterFieldID   *uuid.UUID      `json:"afterFieldId"`
}

type PatchRequest struct {
	FieldName      *string         `json:"fieldName" validate:"omitempty,field_name"`
	Label          *string         `json:"label"`
	FieldValueType *string         `json:"fieldValueType" validate:"omitempty,min=1"`
	FieldType      *string         `json:"fieldType" validate:"omitempty,min=1"`
	Validation     json.RawMessage `json:"validation"`
}

type SwapRequest struct {
	FirstFieldID  uuid.UUID `json:"firstFieldId" validate:"required"`
	SecondFieldID uuid.UUID `json:"secondFieldId" validate:"required"`
}

type Response struct {
	ID             uuid.UUID       `json:"id"`
	FormID         uuid.UUID       `json:"formId"`
	FieldName      string          `json:"fieldName"`
	Label          string          `json:"label,omitempty"`
	FieldValueType string          `json:"fieldValueType"`
	FieldType      string          `json:"fieldType"`
	Validation     json.RawMessage `json:"validation,omitempty"`
	PrevFieldID    *uuid.UUID      `json:"prevFieldId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func ToResponse(f FormField) Response {
	response := Response{
		ID:             f.ID,
		FormID:         f.FormID,
		FieldName:      f.FieldName,
		Label:          f.Label.String,
		FieldValueType: f.FieldValueType,
		FieldType:      f.FieldType,
		CreatedAt:      f.CreatedAt.Time,
		UpdatedAt:      f.UpdatedAt.Time,
	}
	if len(f.Validation) > 0 {
		response.Validation = json.RawMessage(f.Validation)
	}
	if f.PrevFieldID.Valid {
		prev := uuid.UUID(f.PrevFieldID.Bytes)
		response.PrevFieldID = &prev
	}
	return response
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
		tracer:        otel.Tracer("field/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		service:       service,
	}
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	listing, err := h.service.List(ctx, formID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	response := make([]Response, 0, len(listing.Fields))
	for _, f := range listing.Fields {
		response = append(response, ToResponse(f))
	}

	w.Header().Set(HeaderFieldCount, strconv.Itoa(listing.Total))
	w.Header().Set(HeaderFieldListComplete, strconv.FormatBool(listing.Complete()))
	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) InsertHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "InsertHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	var req InsertRequest
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	created, err := h.service.Insert(ctx, formID, currentUser.ID, Spec{
		Name:       req.FieldName,
		Label:      req.Label,
		ValueType:  req.FieldValueType,
		Type:       req.FieldType,
		Validation: req.Validation,
	}, req.AfterFieldID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(created))
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	fieldID, err := handlerutil.ParseUUID(r.PathValue("fieldId"))
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

	updated, err := h.service.Update(ctx, fieldID, currentUser.ID, Patch{
		Name:       req.FieldName,
		Label:      req.Label,
		ValueType:  req.FieldValueType,
		Type:       req.FieldType,
		Validation: req.Validation,
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

	fieldID, err := handlerutil.ParseUUID(r.PathValue("fieldId"))
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	if err := h.service.Delete(ctx, fieldID, currentUser.ID); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}

func (h *Handler) SwapHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SwapHandler")
	defer span.End()
	logger := logutil.WithContext(ctx, h.logger)

	var req SwapRequest
	if err := handlerutil.ParseAndValidateRequestBody(ctx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(ctx)
	if !ok {
		h.problemWriter.WriteError(ctx, w, internal.ErrNoUserInContext, logger)
		return
	}

	if err := h.service.Swap(ctx, req.FirstFieldID, req.SecondFieldID, currentUser.ID); err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}
