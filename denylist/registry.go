package denylist

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "authgate:deny"

// Registry records access tokens voided before their natural expiry. Safe
// for concurrent use.
type Registry struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRegistry returns a Registry keyed under prefix. An empty prefix selects
// the package default.
func NewRegistry(rdb *redis.Client, prefix string) (*Registry, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Registry{rdb: rdb, prefix: prefix, now: time.Now}, nil
}

// Deny marks token as revoked until expiresAt. A token already past its
// expiry needs no marker — the entry would lapse immediately — so Deny is a
// no-op for it.
func (r *Registry) Deny(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(token), "1", ttl).Err()
}

// IsDenied reports whether token carries a live revocation marker.
func (r *Registry) IsDenied(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Registry) key(token string) string {
	return r.prefix + ":" + token
}
