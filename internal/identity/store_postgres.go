package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JayRenji/chat-app/internal/identity/ids"
)

// PostgresStore implements user persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are quoted to avoid injection via identifiers.
// - Unique violations are mapped to ConflictError with a logical field name.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "chat").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "chat",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = `id, username, username_norm, email, email_norm, password_hash,
	first_name, last_name, bio, avatar_path, created_at`

// CreateUser inserts a new user row; uniqueness is enforced by the
// unique indexes on username_norm and email_norm.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	users := pgIdent(s.schema, "users")
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, username, username_norm, email, email_norm, password_hash, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, username, usernameNorm, email, emailNorm, in.PasswordHash, now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{
		ID:           id,
		Username:     username,
		UsernameNorm: usernameNorm,
		Email:        email,
		EmailNorm:    emailNorm,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}, nil
}

// FindByUsername looks up a user by normalized username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+users+` WHERE username_norm = $1`,
		NormalizeUsername(username),
	)
	return scanUser(op, row)
}

// FindByID looks up a user by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "identity.FindByID"

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+users+` WHERE id = $1`,
		id,
	)
	return scanUser(op, row)
}

// UpdateProfile updates the optional profile fields; nil means unchanged.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error) {
	const op = "identity.UpdateProfile"

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`UPDATE `+users+` SET
		     first_name = COALESCE($2, first_name),
		     last_name  = COALESCE($3, last_name),
		     bio        = COALESCE($4, bio)
		   WHERE id = $1
		   RETURNING `+userColumns,
		id, in.FirstName, in.LastName, in.Bio,
	)
	return scanUser(op, row)
}

// UpdateAvatar stores the uploaded avatar file path.
func (s *PostgresStore) UpdateAvatar(ctx context.Context, id string, path string) (User, error) {
	const op = "identity.UpdateAvatar"

	path = strings.TrimSpace(path)
	if path == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty avatar path"}
	}

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`UPDATE `+users+` SET avatar_path = $2 WHERE id = $1 RETURNING `+userColumns,
		id, path,
	)
	return scanUser(op, row)
}

func scanUser(op string, row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.UsernameNorm, &u.Email, &u.EmailNorm, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Bio, &u.AvatarPath, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// pgClassifyUniqueViolation maps a 23505 unique violation to a logical field name.
func pgClassifyUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" {
		return "", false
	}

	c := strings.ToLower(pgErr.ConstraintName)
	switch {
	case strings.Contains(c, "username"):
		return "username", true
	case strings.Contains(c, "email"):
		return "email", true
	default:
		return "unknown", true
	}
}

func pgIdent(schema, table string) string {
	return `"` + schema + `"."` + table + `"`
}

var _ Store = (*PostgresStore)(nil)
