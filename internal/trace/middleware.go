package trace

import (
	"net/http"

	"NYCU-SDC/form-engine-backend/internal/metrics"

	traceutil "github.com/NYCU-SDC/summer/pkg/trace"
	"go.uber.org/zap"
)

type Middleware struct {
	logger  *zap.Logger
	debug   bool
	metrics *metrics.Registry
}

func NewMiddleware(logger *zap.Logger, debug bool, registry *metrics.Registry) *Middleware {
	return &Middleware{
		logger:  logger,
		debug:   debug,
		metrics: registry,
	}
}

func (m *Middleware) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return traceutil.RecoverMiddleware(next, m.logger, m.debug)
}

// TraceMiddleware records the final status of every request against its route pattern.
func (m *Middleware) TraceMiddleware(next http.HandlerFunc) http.HandlerFunc {
	traced := traceutil.TraceMiddleware(next, m.logger, m.debug)

	return func(w http.ResponseWriter, r *http.Request) {
		crw := &traceutil.CustomResponseWriter{ResponseWriter: w}
		traced(crw, r)

		status := crw.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		m.metrics.ObserveRequest(r.Method, r.Pattern, status)
	}
}
