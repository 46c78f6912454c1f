package identity

import (
	"context"
	"time"
)

// User is the canonical registered-account record.
// PasswordHash is never the plaintext secret; it is recomputed only
// when the secret changes.
type User struct {
	ID           string
	Username     string
	UsernameNorm string
	Email        string
	EmailNorm    string
	PasswordHash string

	FirstName  *string
	LastName   *string
	Bio        *string
	AvatarPath *string

	CreatedAt time.Time
}

// CreateUserInput describes a registration request.
// PasswordHash must already be hashed by the caller; this store never
// sees plaintext secrets.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Now          time.Time
}

// ProfileUpdate carries the optional profile fields; nil means "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// Store is the user persistence boundary.
//
// Uniqueness contract: username and email are each globally unique on
// their normalized forms. A violating CreateUser fails with a
// ConflictError and leaves the store unchanged.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// FindByUsername looks a user up by normalized username.
	FindByUsername(ctx context.Context, username string) (User, error)

	FindByID(ctx context.Context, id string) (User, error)

	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error)

	// UpdateAvatar stores the file path of an uploaded profile picture.
	UpdateAvatar(ctx context.Context, id string, path string) (User, error)
}
