package cors

import (
	"net/http"
	"strings"

	corsutil "github.com/NYCU-SDC/summer/pkg/cors"
	"go.uber.org/zap"
)

const allowMethods = "Access-Control-Allow-Methods"

type Middleware struct {
	logger       *zap.Logger
	allowOrigins []string
}

func NewMiddleware(logger *zap.Logger, allowOrigins []string) *Middleware {
	return &Middleware{
		logger:       logger,
		allowOrigins: allowOrigins,
	}
}

// HandlerFunc applies the shared CORS policy and advertises PATCH, which the
// field and form update routes depend on.
func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	handler := corsutil.CORSMiddleware(next, m.logger, m.allowOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		handler(&methodsWriter{ResponseWriter: w}, r)
	}
}

type methodsWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *methodsWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		methods := w.Header().Get(allowMethods)
		if methods != "" && !strings.Contains(methods, http.MethodPatch) {
			w.Header().Set(allowMethods, methods+", "+http.MethodPatch)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *methodsWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
