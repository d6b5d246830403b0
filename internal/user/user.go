package user

import (
	"context"

	"NYCU-SDC/form-engine-backend/internal"

	"github.com/google/uuid"
)

// User is the authenticated caller. Accounts live in the identity provider;
// this service only sees the id carried by the access token.
type User struct {
	ID       uuid.UUID
	Username string
}

// GetFromContext extracts the authenticated user from request context
func GetFromContext(ctx context.Context) (*User, bool) {
	userData, ok := ctx.Value(internal.UserContextKey).(*User)
	return userData, ok
}

// WithUser returns a copy of ctx carrying u as the authenticated user.
func WithUser(ctx context.Context, u *User) context.Context {
	return internal.WithIdentity(ctx, u)
}

func (u User) GetID() uuid.UUID {
	return u.ID
}
