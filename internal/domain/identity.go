package domain

import "github.com/google/uuid"

// Identity is a verified caller reference handed over by the auth layer.
// Two identities are the same caller iff their IDs match; Username is display only.
type Identity struct {
	ID       uuid.UUID
	Username string
}

// NewIdentity creates an Identity.
func NewIdentity(id uuid.UUID, username string) Identity {
	return Identity{ID: id, Username: username}
}

// IsZero reports whether the identity carries no caller.
func (i Identity) IsZero() bool { return i.ID == uuid.Nil }

// Equal compares identities by ID.
func (i Identity) Equal(other Identity) bool { return i.ID == other.ID }
