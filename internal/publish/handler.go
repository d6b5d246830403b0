package publish

import (
	"fmt"
	"net/http"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form"
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

type PublishFormResponse struct {
	URL  string        `json:"url"`
	Form form.Response `json:"form"`
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	baseURL string
	service *Service
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	service *Service,
	baseURL string,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("publish/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		service:       service,
		baseURL:       baseURL,
	}
}

func (h *Handler) PublishForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PublishForm")
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

	updated, err := h.service.PublishForm(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, PublishFormResponse{
		URL:  h.publicURL(formID),
		Form: form.ToResponse(updated),
	})
}

func (h *Handler) UnpublishForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UnpublishForm")
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

	updated, err := h.service.UnpublishForm(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, form.ToResponse(updated))
}

func (h *Handler) publicURL(formID uuid.UUID) string {
	return fmt.Sprintf("%s/forms/%s", h.baseURL, formID.String())
}
