package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a presented token does not exist, has
	// already been redeemed, or when a revoke-all finds no tokens to remove.
	ErrNotFound = errors.New("refresh token not found")
	// ErrExpired is returned when a presented token exists but its expiry
	// has passed. The record is destroyed as a side effect.
	ErrExpired = errors.New("refresh token expired")
)

// Store is the persistence capability the rotator needs. Implementations
// must make Consume an atomic delete-if-present: it removes the record keyed
// by the exact token value and returns it, or ErrNotFound when no record was
// removed. Two concurrent Consume calls for the same value must yield
// exactly one record between them.
type Store interface {
	Insert(ctx context.Context, token *Token) error
	Consume(ctx context.Context, value string) (*Token, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// Config holds rotation parameters.
type Config struct {
	// TTL is the lifetime of a freshly issued refresh token.
	TTL time.Duration
	// TokenBytes is the entropy of the opaque value; zero selects
	// MinTokenBytes.
	TokenBytes int
}

// Rotator issues opaque refresh tokens, enforces single-use rotation, and
// revokes tokens in bulk. Safe for concurrent use; all multi-step races are
// resolved by the store's atomic Consume.
type Rotator struct {
	store      Store
	ttl        time.Duration
	tokenBytes int
	now        func() time.Time
}

// NewRotator validates cfg and returns a Rotator backed by store.
func NewRotator(store Store, cfg Config) (*Rotator, error) {
	if store == nil {
		return nil, errors.New("refresh store required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("refresh TTL must be positive")
	}
	if cfg.TokenBytes == 0 {
		cfg.TokenBytes = MinTokenBytes
	}
	if cfg.TokenBytes < MinTokenBytes {
		return nil, errors.New("refresh token entropy below minimum")
	}
	return &Rotator{
		store:      store,
		ttl:        cfg.TTL,
		tokenBytes: cfg.TokenBytes,
		now:        time.Now,
	}, nil
}

// Issue generates a fresh opaque token for userID, persists it with expiry
// now + TTL, and returns the record. It fails only when the store fails.
func (r *Rotator) Issue(ctx context.Context, userID string) (*Token, error) {
	value, err := NewOpaque(r.tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := r.now().UTC()
	token := &Token{
		ID:        uuid.New().String(),
		UserID:    userID,
		Value:     value,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Insert(ctx, token); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return token, nil
}

// Redeem consumes the presented token and issues its replacement for the
// same owner. The presented value is deleted atomically before the
// replacement exists, so it can never be redeemed twice: the loser of a
// concurrent redemption observes ErrNotFound.
//
// An expired presented token is destroyed by the consume and reported as
// ErrExpired; no replacement is issued.
func (r *Rotator) Redeem(ctx context.Context, presented string) (*Token, error) {
	old, err := r.store.Consume(ctx, presented)
	if err != nil {
		return nil, err
	}
	if old.Expired(r.now()) {
		return nil, ErrExpired
	}
	return r.Issue(ctx, old.UserID)
}

// RevokeAll deletes every refresh token owned by userID and returns how many
// were removed. A user with zero active tokens is an error, not a no-op:
// callers treat sign-out without a live session as a failed request.
func (r *Rotator) RevokeAll(ctx context.Context, userID string) (int, error) {
	count, err := r.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNotFound
	}
	return count, nil
}
