package formbuilder

import (
	"context"
	"testing"

	"NYCU-SDC/form-engine-backend/internal/form"
	"NYCU-SDC/form-engine-backend/test/testdata"
	"NYCU-SDC/form-engine-backend/test/testdata/dbbuilder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func (b Builder) Queries() *form.Queries {
	return form.New(b.db)
}

func (b Builder) Create(opts ...Option) form.Form {
	queries := b.Queries()

	p := &FactoryParams{
		Title:       testdata.RandomName(),
		Description: testdata.RandomDescription(),
		OwnerID:     uuid.New(),
	}
	for _, opt := range opts {
		opt(p)
	}

	formRow, err := queries.Create(context.Background(), form.CreateParams{
		Title:       p.Title,
		Description: pgtype.Text{String: p.Description, Valid: p.Description != ""},
		OwnerID:     p.OwnerID,
	})
	require.NoError(b.t, err)

	if p.Published {
		formRow, err = queries.SetPublished(context.Background(), form.SetPublishedParams{ID: formRow.ID, IsPublished: true})
		require.NoError(b.t, err)
	}

	return formRow
}
