package internal

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// UserContextKey is the request context key holding the authenticated identity
const UserContextKey contextKey = "user"

type Identity interface {
	GetID() uuid.UUID
}

// GetUserIDFromContext extracts the authenticated user id from request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userData := ctx.Value(UserContextKey)
	if userData == nil {
		return uuid.Nil, false
	}

	identity, ok := userData.(Identity)
	if !ok {
		return uuid.Nil, false
	}

	return identity.GetID(), true
}

// WithIdentity returns a copy of ctx carrying the given identity
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, UserContextKey, identity)
}
