package session

import (
	"context"
	"errors"
	"time"
)

// Session is one issued session row. Only the token hash is stored;
// the session references its user by id only.
type Session struct {
	ID            string
	UserID        string
	TokenHash     string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	InvalidatedAt *time.Time
}

// errSessionRowNotFound is internal to stores; the Manager maps it to
// ErrSessionNotActive so absent and expired tokens are indistinguishable.
var errSessionRowNotFound = errors.New("session row not found")

// Store abstracts session persistence.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, s Session) error

	// GetByTokenHash loads a session by token hash, whether or not it
	// is still active.
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)

	// Invalidate marks the session invalidated. Invalidating an absent
	// or already-invalidated session is a no-op.
	Invalidate(ctx context.Context, tokenHash string, now time.Time) error
}
