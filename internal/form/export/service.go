package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/form/response"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sheetName = "Responses"

var fixedColumns = []string{"Response ID", "Respondent ID", "Submitted At"}

type ResponseLister interface {
	ListForOwner(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) ([]response.Projected, error)
}

type FieldLister interface {
	ListOrdered(ctx context.Context, formID uuid.UUID) ([]field.FormField, error)
}

type Service struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	responses ResponseLister
	fields    FieldLister
}

func NewService(logger *zap.Logger, responses ResponseLister, fields FieldLister) *Service {
	return &Service{
		logger:    logger,
		tracer:    otel.Tracer("export/service"),
		responses: responses,
		fields:    fields,
	}
}

// ExportSubmitted renders the submitted responses of a form owned by ownerID
// as an xlsx workbook with one row per response.
func (s *Service) ExportSubmitted(ctx context.Context, formID uuid.UUID, ownerID uuid.UUID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ExportSubmitted")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	list, err := s.responses.ListForOwner(ctx, formID, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	fields, err := s.fields.ListOrdered(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	columns := answerColumns(fields, list)

	data, err := render(columns, list)
	if err != nil {
		logger.Error("Failed to render response workbook", zap.Error(err), zap.String("form_id", formID.String()))
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", internal.ErrExportFailed, err)
	}

	logger.Info("Exported submitted responses",
		zap.String("form_id", formID.String()),
		zap.Int("rows", len(list)),
		zap.Int("columns", len(fixedColumns)+len(columns)),
	)

	return data, nil
}

// answerColumns lists field names in display order followed by answer keys
// that match no current field, sorted.
func answerColumns(fields []field.FormField, list []response.Projected) []string {
	seen := make(map[string]bool, len(fields))
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f.FieldName] {
			continue
		}
		seen[f.FieldName] = true
		columns = append(columns, f.FieldName)
	}

	var extra []string
	for _, p := range list {
		for key := range p.Answers {
			if seen[key] {
				continue
			}
			seen[key] = true
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(columns, extra...)
}

func render(columns []string, list []response.Projected) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, len(fixedColumns)+len(columns))
	for _, c := range fixedColumns {
		header = append(header, c)
	}
	for _, c := range columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, p := range list {
		row := make([]interface{}, 0, len(header))
		submittedAt := ""
		if p.SubmittedAt.Valid {
			submittedAt = p.SubmittedAt.Time.UTC().Format(time.RFC3339)
		}
		row = append(row, p.ID.String(), p.RespondentID.String(), submittedAt)
		for _, c := range columns {
			value, ok := p.Answers[c]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, value.Text())
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
