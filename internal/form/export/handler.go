package export

import (
	"fmt"
	"net/http"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/user"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	problemWriter *problem.HttpWriter

	service *Service
}

func NewHandler(logger *zap.Logger, problemWriter *problem.HttpWriter, service *Service) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("export/handler"),
		problemWriter: problemWriter,
		service:       service,
	}
}

func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ExportHandler")
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

	data, err := h.service.ExportSubmitted(ctx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(ctx, w, err, logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="responses-%s.xlsx"`, formID.String()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("Failed to write export body", zap.Error(err))
	}
}
