package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory, keyed by token hash.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create inserts a new session row.
func (s *MemoryStore) Create(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.TokenHash] = sess
	return nil
}

// GetByTokenHash loads a session by token hash.
func (s *MemoryStore) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[tokenHash]
	if !ok {
		return Session{}, errSessionRowNotFound
	}
	return sess, nil
}

// Invalidate marks the session invalidated; absent rows are a no-op.
func (s *MemoryStore) Invalidate(ctx context.Context, tokenHash string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[tokenHash]
	if !ok || sess.InvalidatedAt != nil {
		return nil
	}
	sess.InvalidatedAt = &now
	s.sessions[tokenHash] = sess
	return nil
}

var _ Store = (*MemoryStore)(nil)
