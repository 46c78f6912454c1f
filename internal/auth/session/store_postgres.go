package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions over PostgreSQL.
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

var pgSchemaRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore constructs a PostgresStore using schema "chat" by default.
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}

	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "chat"
	}
	if !pgSchemaRe.MatchString(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier")
	}

	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table() string {
	return `"` + s.schema + `"."sessions"`
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (
		     id, user_id, token_hash, created_at, expires_at
		   ) VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.UserID, sess.TokenHash, sess.CreatedAt, sess.ExpiresAt,
	)
	return err
}

// GetByTokenHash loads a session by token hash.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, created_at, expires_at, invalidated_at
		   FROM `+s.table()+` WHERE token_hash = $1`,
		tokenHash,
	)

	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.CreatedAt, &sess.ExpiresAt, &sess.InvalidatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, errSessionRowNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

// Invalidate marks the session invalidated; absent rows are a no-op.
func (s *PostgresStore) Invalidate(ctx context.Context, tokenHash string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE `+s.table()+` SET invalidated_at = $2
		   WHERE token_hash = $1 AND invalidated_at IS NULL`,
		tokenHash, now,
	)
	return err
}

var _ Store = (*PostgresStore)(nil)
