package redistore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tallforge/authgate/refresh"
)

const defaultPrefix = "authgate"

// expiredRetention keeps a record alive past its expiry so a late redemption
// is reported as expired rather than not-found. After the window the
// distinction stops mattering and Redis reclaims the key.
const expiredRetention = 30 * 24 * time.Hour

const consumeScript = `
local payload = redis.call("GET", KEYS[1])
if not payload then
  return false
end
redis.call("DEL", KEYS[1])
local record = cjson.decode(payload)
redis.call("SREM", ARGV[1] .. record.user_id, record.value)
return payload
`

const deleteByUserScript = `
local values = redis.call("SMEMBERS", KEYS[1])
local count = 0
for _, value in ipairs(values) do
  count = count + redis.call("DEL", ARGV[1] .. value)
end
redis.call("DEL", KEYS[1])
return count
`

var (
	consumeLua      = redis.NewScript(consumeScript)
	deleteByUserLua = redis.NewScript(deleteByUserScript)
)

type record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a Redis-backed [refresh.Store]. Safe for concurrent use.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New returns a Store keyed under prefix. An empty prefix selects the
// package default.
func New(rdb *redis.Client, prefix string) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}, nil
}

// Insert persists the token record and indexes it under its owner.
func (s *Store) Insert(ctx context.Context, token *refresh.Token) error {
	payload, err := json.Marshal(record{
		ID:        token.ID,
		UserID:    token.UserID,
		Value:     token.Value,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
		UpdatedAt: token.UpdatedAt,
	})
	if err != nil {
		return err
	}

	retention := time.Until(token.ExpiresAt) + expiredRetention
	if retention <= 0 {
		retention = time.Minute
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.tokenKey(token.Value), payload, retention)
	pipe.SAdd(ctx, s.userKey(token.UserID), token.Value)
	_, err = pipe.Exec(ctx)
	return err
}

// Consume atomically removes and returns the record for value, or
// [refresh.ErrNotFound] when no record was removed.
func (s *Store) Consume(ctx context.Context, value string) (*refresh.Token, error) {
	res, err := consumeLua.Run(
		ctx, s.rdb,
		[]string{s.tokenKey(value)},
		s.userKeyPrefix(),
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, refresh.ErrNotFound
		}
		return nil, err
	}

	payload, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected consume reply type %T", res)
	}

	var rec record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decode refresh token record: %w", err)
	}
	return &refresh.Token{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Value:     rec.Value,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// DeleteByUser removes every token owned by userID and returns how many
// records were actually deleted.
func (s *Store) DeleteByUser(ctx context.Context, userID string) (int, error) {
	count, err := deleteByUserLua.Run(
		ctx, s.rdb,
		[]string{s.userKey(userID)},
		s.tokenKeyPrefix(),
	).Int()
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) tokenKey(value string) string {
	return s.tokenKeyPrefix() + value
}

func (s *Store) tokenKeyPrefix() string {
	return s.prefix + ":rt:"
}

func (s *Store) userKey(userID string) string {
	return s.userKeyPrefix() + userID
}

func (s *Store) userKeyPrefix() string {
	return s.prefix + ":user:"
}
