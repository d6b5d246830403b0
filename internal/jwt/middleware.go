package jwt

import (
	"context"
	"net/http"
	"strings"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/user"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const AccessTokenCookieName = "access_token"

type Parser interface {
	Parse(ctx context.Context, tokenString string) (user.User, error)
}

type Middleware struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
	parser        Parser
}

func NewMiddleware(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, parser Parser) *Middleware {
	return &Middleware{
		logger:        logger,
		tracer:        otel.Tracer("jwt/middleware"),
		validator:     validator,
		problemWriter: problemWriter,
		parser:        parser,
	}
}

// AuthenticateMiddleware resolves the caller from the Authorization header,
// falling back to the access token cookie, and stores it in the request context.
func (m *Middleware) AuthenticateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceCtx, span := m.tracer.Start(r.Context(), "AuthenticateMiddleware")
		defer span.End()
		logger := logutil.WithContext(traceCtx, m.logger)

		token, err := extractToken(r)
		if err != nil {
			m.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}

		u, err := m.parser.Parse(traceCtx, token)
		if err != nil {
			m.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidJWTToken, logger)
			return
		}

		next(w, r.WithContext(user.WithUser(r.Context(), &u)))
	}
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return "", internal.ErrInvalidAuthHeaderFormat
		}
		return strings.TrimSpace(token), nil
	}

	cookie, err := r.Cookie(AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", internal.ErrMissingAuthHeader
	}
	return cookie.Value, nil
}
