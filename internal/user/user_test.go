package user

import (
	"context"
	"testing"

	"NYCU-SDC/form-engine-backend/internal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGetFromContext(t *testing.T) {
	_, ok := GetFromContext(context.Background())
	require.False(t, ok)

	u := &User{ID: uuid.New(), Username: "alice"}
	ctx := WithUser(context.Background(), u)

	got, ok := GetFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, u, got)

	id, ok := internal.GetUserIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, u.ID, id)
}
