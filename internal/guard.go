package internal

import "github.com/google/uuid"

// RequireOwner is the single ownership check shared by every owner-only
// operation. A missing owner means the resource does not exist.
func RequireOwner(ownerID, callerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrNotFound
	}
	if callerID == uuid.Nil || ownerID != callerID {
		return ErrForbiddenError
	}
	return nil
}
