package internal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()

	testCases := []struct {
		name        string
		ownerID     uuid.UUID
		callerID    uuid.UUID
		expectedErr error
	}{
		{name: "Should allow the owner", ownerID: owner, callerID: owner},
		{name: "Should forbid another user", ownerID: owner, callerID: uuid.New(), expectedErr: ErrForbiddenError},
		{name: "Should forbid an anonymous caller", ownerID: owner, callerID: uuid.Nil, expectedErr: ErrForbiddenError},
		{name: "Should report a missing resource", ownerID: uuid.Nil, callerID: owner, expectedErr: ErrNotFound},
		{name: "Should report a missing resource before the caller", ownerID: uuid.Nil, callerID: uuid.Nil, expectedErr: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := RequireOwner(tc.ownerID, tc.callerID)
			if tc.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
