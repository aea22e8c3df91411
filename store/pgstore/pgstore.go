package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authgate "github.com/tallforge/authgate"
	"github.com/tallforge/authgate/refresh"
)

// uniqueViolation is the PostgreSQL error code for a violated unique
// constraint.
const uniqueViolation = "23505"

// Schema is the DDL for the tables this store owns.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS refresh_tokens_user_id_idx ON refresh_tokens (user_id);
`

// Store is a PostgreSQL-backed [authgate.UserStore] and [refresh.Store].
// Safe for concurrent use; every method is a single statement, so no
// cross-call transaction is assumed.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pgx pool required")
	}
	return &Store{pool: pool}, nil
}

// CreateSchema applies [Schema]. Idempotent.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// GetByID returns the user with the given id, or (nil, nil) when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*authgate.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email (exact match), or
// (nil, nil) when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*authgate.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`, email)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*authgate.User, error) {
	var u authgate.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the user. A violated email uniqueness constraint maps to
// [authgate.ErrEmailExists], so the database — not the orchestrator's
// advisory pre-check — is what ultimately serializes duplicate sign-ups.
func (s *Store) Create(ctx context.Context, user *authgate.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return authgate.ErrEmailExists
		}
		return err
	}
	return nil
}

// Insert persists the refresh-token record.
func (s *Store) Insert(ctx context.Context, token *refresh.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.UserID, token.Value,
		token.ExpiresAt, token.CreatedAt, token.UpdatedAt,
	)
	return err
}

// Consume atomically removes and returns the record for value. The DELETE
// with RETURNING is the single-use guarantee: only one of two concurrent
// redemptions gets the row back, the other gets [refresh.ErrNotFound].
func (s *Store) Consume(ctx context.Context, value string) (*refresh.Token, error) {
	var t refresh.Token
	err := s.pool.QueryRow(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1
		 RETURNING id, user_id, token, expires_at, created_at, updated_at`,
		value,
	).Scan(&t.ID, &t.UserID, &t.Value, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, refresh.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// DeleteByUser removes every token owned by userID and returns the count.
func (s *Store) DeleteByUser(ctx context.Context, userID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
