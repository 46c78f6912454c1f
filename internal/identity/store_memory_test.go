package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndFind(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	u, err := st.CreateUser(ctx, CreateUserInput{
		Username:     "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if u.UsernameNorm != "alice" || u.EmailNorm != "a@x.com" {
		t.Fatalf("unexpected normalization: %q %q", u.UsernameNorm, u.EmailNorm)
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt=%v, got %v", now, u.CreatedAt)
	}

	// Lookup is case-insensitive on username.
	got, err := st.FindByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected same user")
	}

	byID, err := st.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Username != "Alice" {
		t.Fatalf("expected original-cased username, got %q", byID.Username)
	}
}

func TestMemoryStore_UniquenessConflicts(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, CreateUserInput{
		Username: "alice", Email: "a@x.com", PasswordHash: "h",
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	cases := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{name: "duplicate username", username: "alice", email: "other@x.com", wantField: "username"},
		{name: "duplicate username case-insensitive", username: "Alice", email: "other2@x.com", wantField: "username"},
		{name: "duplicate email", username: "bob", email: "a@x.com", wantField: "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.CreateUser(ctx, CreateUserInput{
				Username: tc.username, Email: tc.email, PasswordHash: "h",
			})
			if !IsConflict(err) {
				t.Fatalf("expected conflict, got: %v", err)
			}
			if field, _ := ConflictField(err); field != tc.wantField {
				t.Fatalf("expected field %q, got %q", tc.wantField, field)
			}
		})
	}

	// A failed registration leaves the store unchanged: the rejected
	// username/email combinations are still free for valid users.
	if _, err := st.FindByUsername(ctx, "bob"); !IsNotFound(err) {
		t.Fatalf("expected bob to be absent, got: %v", err)
	}
	if _, err := st.CreateUser(ctx, CreateUserInput{
		Username: "bob", Email: "b@x.com", PasswordHash: "h",
	}); err != nil {
		t.Fatalf("store should be unchanged after conflicts: %v", err)
	}
}

func TestMemoryStore_UpdateProfileAndAvatar(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	u, err := st.CreateUser(ctx, CreateUserInput{
		Username: "alice", Email: "a@x.com", PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	first := "Alice"
	bio := "hello"
	got, err := st.UpdateProfile(ctx, u.ID, ProfileUpdate{FirstName: &first, Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.FirstName == nil || *got.FirstName != "Alice" {
		t.Fatalf("first name not updated: %+v", got)
	}
	if got.LastName != nil {
		t.Fatalf("last name should be untouched")
	}

	got, err = st.UpdateAvatar(ctx, u.ID, "uploads/123-pic.png")
	if err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if got.AvatarPath == nil || *got.AvatarPath != "uploads/123-pic.png" {
		t.Fatalf("avatar not updated: %+v", got)
	}

	if _, err := st.UpdateProfile(ctx, "missing", ProfileUpdate{}); !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.CreateUser(ctx, CreateUserInput{Username: "", Email: "a@x.com", PasswordHash: "h"})
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got: %v", err)
	}

	var oe OpError
	if !errors.As(err, &oe) || oe.Op != "identity.CreateUser" {
		t.Fatalf("expected OpError with op, got: %v", err)
	}
}
