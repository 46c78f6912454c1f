package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JayRenji/chat-app/internal/identity"
	"github.com/JayRenji/chat-app/internal/identity/ids"
	"github.com/JayRenji/chat-app/internal/security/password"
)

// Manager implements the high-level session operations: authenticate,
// resolve and invalidate.
type Manager struct {
	cfg   Config
	log   *slog.Logger
	users identity.Store
	store Store
	pw    password.Config

	// now is injectable for testable expiry.
	now func() time.Time

	// dummyHash makes lookups for unknown identities cost a bcrypt
	// verification, same as a wrong password.
	dummyHash string
}

// Issued is the result of a successful authentication.
// Token is the plain opaque token, shown to the client exactly once.
type Issued struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
	User      identity.User
}

// NewManager constructs a Manager.
func NewManager(cfg Config, log *slog.Logger, users identity.Store, store Store, pw password.Config) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, fmt.Errorf("%w: nil user store", ErrConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil session store", ErrConfig)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive TTL", ErrConfig)
	}

	m := &Manager{
		cfg:   cfg,
		log:   log,
		users: users,
		store: store,
		pw:    pw,
		now:   func() time.Time { return time.Now().UTC() },
	}

	if hash, err := pw.Hash("dummy-secret-for-timing-only"); err == nil {
		m.dummyHash = hash
	}

	return m, nil
}

// WithClock overrides the manager's clock. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// Authenticate verifies the credential and issues a new session.
//
// Failure kinds ErrUnknownIdentity and ErrInvalidCredential stay
// distinct for server-side logging but callers must collapse them into
// one response (see IsAuthFailure). Hashing failures surface as real
// errors, never as a mismatch.
func (m *Manager) Authenticate(ctx context.Context, username, secret string) (Issued, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return Issued{}, ErrInvalidCredential
	}

	now := m.now()

	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) {
			// Timing resistance: burn a verification anyway.
			if m.dummyHash != "" {
				_, _ = m.pw.Verify(m.dummyHash, secret)
			}
			return Issued{}, ErrUnknownIdentity
		}
		return Issued{}, err
	}

	ok, err := m.pw.Verify(user.PasswordHash, secret)
	if err != nil {
		return Issued{}, fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		return Issued{}, ErrInvalidCredential
	}

	plain, hash, err := newOpaqueToken(m.cfg.TokenBytes, m.cfg.HMACKey)
	if err != nil {
		return Issued{}, err
	}

	sessionID, err := ids.NewULID(now)
	if err != nil {
		return Issued{}, err
	}

	sess := Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return Issued{}, err
	}

	m.log.Info("session.issued", "session_id", sessionID, "user_id", user.ID)

	return Issued{
		SessionID: sessionID,
		Token:     plain,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
	}, nil
}

// Resolve maps a token back to its identity. The session stores only
// the user id; the full record is re-fetched so profile edits are
// visible immediately.
func (m *Manager) Resolve(ctx context.Context, token string) (identity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 4096 {
		return identity.User{}, ErrSessionNotActive
	}

	now := m.now()

	sess, err := m.store.GetByTokenHash(ctx, hashTokenHex(token, m.cfg.HMACKey))
	if err != nil {
		if err == errSessionRowNotFound {
			return identity.User{}, ErrSessionNotActive
		}
		return identity.User{}, err
	}

	if sess.InvalidatedAt != nil {
		return identity.User{}, ErrSessionNotActive
	}
	if !sess.ExpiresAt.After(now) {
		return identity.User{}, ErrSessionNotActive
	}

	user, err := m.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			// User deleted out from under the session.
			return identity.User{}, ErrSessionNotActive
		}
		return identity.User{}, err
	}

	return user, nil
}

// Invalidate performs an explicit logout. Idempotent: unknown or
// already-invalidated tokens are a no-op.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return m.store.Invalidate(ctx, hashTokenHex(token, m.cfg.HMACKey), m.now())
}
