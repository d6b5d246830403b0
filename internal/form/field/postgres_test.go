package field_test

import (
	"context"
	"testing"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/richtext"
	"NYCU-SDC/form-engine-backend/test/testdata"
	"NYCU-SDC/form-engine-backend/test/testdata/dbbuilder"
	formbuilder "NYCU-SDC/form-engine-backend/test/testdata/dbbuilder/form"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fieldNames(fields []field.FormField) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.FieldName)
	}
	return names
}

func TestService_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := dbbuilder.SetupPostgres(t)
	ctx := context.Background()

	ownerID := uuid.New()
	f := formbuilder.New(t, db).Create(formbuilder.WithOwner(ownerID))
	service := field.NewService(zap.NewNop(), db, richtext.NewSanitizer(), nil)

	insert := func(name string, after *uuid.UUID) field.FormField {
		created, err := service.Insert(ctx, f.ID, ownerID, field.Spec{
			Name:      name,
			ValueType: "string",
			Type:      "text",
		}, after)
		require.NoError(t, err)
		return created
	}

	a := insert("a", nil)
	b := insert("b", &a.ID)
	c := insert("c", &b.ID)
	head := insert("head", nil)

	ordered, err := service.ListOrdered(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"head", "a", "b", "c"}, fieldNames(ordered))

	require.NoError(t, service.Swap(ctx, head.ID, c.ID, ownerID))
	ordered, err = service.ListOrdered(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a", "b", "head"}, fieldNames(ordered))

	require.NoError(t, service.Delete(ctx, a.ID, ownerID))
	ordered, err = service.ListOrdered(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "head"}, fieldNames(ordered))

	_, err = service.Insert(ctx, f.ID, uuid.New(), field.Spec{Name: testdata.RandomFieldName(), ValueType: "string", Type: "text"}, nil)
	require.ErrorIs(t, err, internal.ErrForbiddenError)

	report, err := service.Inspect(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, 3, report.FieldCount)
	require.Equal(t, 3, report.OrderedCount)
	require.Empty(t, report.Forks)
	require.Empty(t, report.Dangling)

	listing, err := service.List(ctx, f.ID)
	require.NoError(t, err)
	require.True(t, listing.Complete())
	require.Equal(t, 3, listing.Total)
}
