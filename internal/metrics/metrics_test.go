package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.FieldMutation("insert")
	r.FieldMutation("insert")
	r.FieldMutation("swap")
	r.FieldListCorrupted()
	r.ResponseWritten("submitted")
	r.ResponseRejected("already_submitted")

	require.Equal(t, 2.0, testutil.ToFloat64(r.fieldMutations.WithLabelValues("insert")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fieldMutations.WithLabelValues("swap")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fieldCorruptions))
	require.Equal(t, 1.0, testutil.ToFloat64(r.responseWrites.WithLabelValues("submitted")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.rejectedResponses.WithLabelValues("already_submitted")))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	require.NotPanics(t, func() {
		r.FieldMutation("delete")
		r.FieldListCorrupted()
		r.FieldOrderConflict()
		r.ObserveRequest("GET", "", 200)
	})
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest(http.MethodGet, "GET /api/healthz", http.StatusOK)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "form_engine_http_requests_total"))
}
