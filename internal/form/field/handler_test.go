package field

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"NYCU-SDC/form-engine-backend/internal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler_ListHandler(t *testing.T) {
	type testCase struct {
		name             string
		corrupt          bool
		expectedCount    string
		expectedComplete string
	}

	testCases := []testCase{
		{name: "Should report complete list", expectedCount: "3", expectedComplete: "true"},
		{name: "Should report truncated list", corrupt: true, expectedCount: "3", expectedComplete: "false"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, store := newTestService(t)
			ownerID := uuid.New()
			formID := store.addForm(ownerID)
			existing := seed(t, s, formID, ownerID, 3)

			if tc.corrupt {
				second := store.fields[existing[1]]
				second.PrevFieldID = link(existing[2])
				store.fields[existing[1]] = second
			}

			h := NewHandler(zap.NewNop(), internal.NewValidator(), internal.NewProblemWriter(), s)

			r := httptest.NewRequest(http.MethodGet, "/api/forms/"+formID.String()+"/fields", nil)
			r.SetPathValue("formId", formID.String())
			w := httptest.NewRecorder()

			h.ListHandler(w, r)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tc.expectedCount, w.Header().Get(HeaderFieldCount))
			require.Equal(t, tc.expectedComplete, w.Header().Get(HeaderFieldListComplete))
		})
	}
}

func TestHandler_ListHandler_UnknownForm(t *testing.T) {
	s, _ := newTestService(t)
	h := NewHandler(zap.NewNop(), internal.NewValidator(), internal.NewProblemWriter(), s)

	formID := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/api/forms/"+formID+"/fields", nil)
	r.SetPathValue("formId", formID)
	w := httptest.NewRecorder()

	h.ListHandler(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Header().Get(HeaderFieldCount))
}
