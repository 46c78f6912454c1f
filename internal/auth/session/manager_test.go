package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JayRenji/chat-app/internal/identity"
	"github.com/JayRenji/chat-app/internal/security/password"
)

func testManager(t *testing.T) (*Manager, *identity.MemoryStore) {
	t.Helper()

	pw := password.DefaultConfig()
	pw.Cost = bcrypt.MinCost

	users := identity.NewMemoryStore()
	m, err := NewManager(DefaultConfig(), nil, users, NewMemoryStore(), pw)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, users
}

func registerUser(t *testing.T, users *identity.MemoryStore, username, email, secret string) identity.User {
	t.Helper()

	pw := password.DefaultConfig()
	pw.Cost = bcrypt.MinCost
	hash, err := pw.Hash(secret)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	u, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Username: username, Email: email, PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestAuthenticate_IssuesResolvableSession(t *testing.T) {
	t.Parallel()

	m, users := testManager(t)
	u := registerUser(t, users, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	issued, err := m.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if issued.Token == "" || issued.SessionID == "" {
		t.Fatalf("expected token and session id")
	}
	if issued.User.ID != u.ID {
		t.Fatalf("issued session bound to wrong user")
	}

	got, err := m.Resolve(ctx, issued.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("resolved wrong user: %q", got.ID)
	}

	// Two logins never yield the same token.
	issued2, err := m.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate #2: %v", err)
	}
	if issued2.Token == issued.Token {
		t.Fatalf("tokens must be unique per session")
	}
}

func TestAuthenticate_FailureKinds(t *testing.T) {
	t.Parallel()

	m, users := testManager(t)
	registerUser(t, users, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	_, err := m.Authenticate(ctx, "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got: %v", err)
	}
	if !IsAuthFailure(err) {
		t.Fatalf("wrong secret must be an auth failure")
	}

	_, err = m.Authenticate(ctx, "nobody", "pw1")
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got: %v", err)
	}
	if !IsAuthFailure(err) {
		t.Fatalf("unknown identity must be an auth failure")
	}
}

func TestResolve_Expiry(t *testing.T) {
	t.Parallel()

	m, users := testManager(t)
	registerUser(t, users, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.WithClock(func() time.Time { return current })

	issued, err := m.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// Still valid just before expiry.
	current = issued.ExpiresAt.Add(-time.Second)
	if _, err := m.Resolve(ctx, issued.Token); err != nil {
		t.Fatalf("Resolve before expiry: %v", err)
	}

	// Rejected at and after expiry.
	current = issued.ExpiresAt
	if _, err := m.Resolve(ctx, issued.Token); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive at expiry, got: %v", err)
	}
}

func TestInvalidate_Idempotent(t *testing.T) {
	t.Parallel()

	m, users := testManager(t)
	registerUser(t, users, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	issued, err := m.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := m.Invalidate(ctx, issued.Token); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := m.Resolve(ctx, issued.Token); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive after logout, got: %v", err)
	}

	// Repeated and unknown-token invalidation are no-ops.
	if err := m.Invalidate(ctx, issued.Token); err != nil {
		t.Fatalf("second Invalidate: %v", err)
	}
	if err := m.Invalidate(ctx, "never-issued-token"); err != nil {
		t.Fatalf("Invalidate of unknown token: %v", err)
	}
}

func TestResolve_GarbageToken(t *testing.T) {
	t.Parallel()

	m, _ := testManager(t)

	for _, token := range []string{"", "   ", "bogus"} {
		if _, err := m.Resolve(context.Background(), token); !errors.Is(err, ErrSessionNotActive) {
			t.Fatalf("token %q: expected ErrSessionNotActive, got: %v", token, err)
		}
	}
}

func TestResolve_SeesFreshProfile(t *testing.T) {
	t.Parallel()

	m, users := testManager(t)
	u := registerUser(t, users, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	issued, err := m.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	bio := "updated after login"
	if _, err := users.UpdateProfile(ctx, u.ID, identity.ProfileUpdate{Bio: &bio}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	got, err := m.Resolve(ctx, issued.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Bio == nil || *got.Bio != bio {
		t.Fatalf("session must re-fetch the user record, got: %+v", got.Bio)
	}
}
