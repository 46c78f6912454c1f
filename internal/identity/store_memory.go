package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JayRenji/chat-app/internal/identity/ids"
)

// MemoryStore is the in-process Store used when no database is
// configured. All maps are guarded by one mutex; lookups index the
// normalized username/email forms.
type MemoryStore struct {
	mu         sync.Mutex
	byID       map[string]*User
	byUsername map[string]string // username_norm -> id
	byEmail    map[string]string // email_norm -> id
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// CreateUser registers a new user, enforcing username/email uniqueness.
// On conflict nothing is written.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username and email are required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	usernameNorm := NormalizeUsername(username)
	emailNorm := NormalizeEmail(email)

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[usernameNorm]; taken {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if _, taken := s.byEmail[emailNorm]; taken {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := &User{
		ID:           id,
		Username:     username,
		UsernameNorm: usernameNorm,
		Email:        email,
		EmailNorm:    emailNorm,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}

	s.byID[id] = u
	s.byUsername[usernameNorm] = id
	s.byEmail[emailNorm] = id

	return *u, nil
}

// FindByUsername looks up a user by normalized username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[NormalizeUsername(username)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return *s.byID[id], nil
}

// FindByID looks up a user by id.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return *u, nil
}

// UpdateProfile updates the optional profile fields; nil fields are left untouched.
func (s *MemoryStore) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error) {
	const op = "identity.UpdateProfile"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		u.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		u.LastName = &v
	}
	if in.Bio != nil {
		v := strings.TrimSpace(*in.Bio)
		u.Bio = &v
	}

	return *u, nil
}

// UpdateAvatar stores the uploaded avatar file path.
func (s *MemoryStore) UpdateAvatar(ctx context.Context, id string, path string) (User, error) {
	const op = "identity.UpdateAvatar"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty avatar path"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	u.AvatarPath = &path
	return *u, nil
}

var _ Store = (*MemoryStore)(nil)
