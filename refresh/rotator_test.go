package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a mutex-guarded in-memory Store with atomic Consume, the
// minimum contract a production store must honor.
type fakeStore struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: make(map[string]*Token)}
}

func (s *fakeStore) Insert(_ context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[token.Value] = &cp
	return nil
}

func (s *fakeStore) Consume(_ context.Context, value string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.tokens, value)
	return token, nil
}

func (s *fakeStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for value, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, value)
			count++
		}
	}
	return count, nil
}

func newTestRotator(t *testing.T, store Store) *Rotator {
	t.Helper()
	rotator, err := NewRotator(store, Config{TTL: 7 * 24 * time.Hour})
	require.NoError(t, err)
	return rotator
}

func TestIssuePersistsToken(t *testing.T) {
	store := newFakeStore()
	rotator := newTestRotator(t, store)

	token, err := rotator.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", token.UserID)
	assert.NotEmpty(t, token.ID)
	assert.GreaterOrEqual(t, len(token.Value), 86, "64 bytes of entropy encode to at least 86 chars")
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), token.ExpiresAt, 5*time.Second)

	stored, err := store.Consume(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, stored.ID)
}

func TestIssueValuesAreUnique(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := rotator.Issue(context.Background(), "user-1")
		require.NoError(t, err)
		require.False(t, seen[token.Value], "duplicate opaque value")
		seen[token.Value] = true
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())

	_, err := rotator.Redeem(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemIsSingleUse(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())

	original, err := rotator.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	replacement, err := rotator.Redeem(context.Background(), original.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", replacement.UserID)
	assert.NotEqual(t, original.Value, replacement.Value)

	// The original value is spent; a second redemption must fail.
	_, err = rotator.Redeem(context.Background(), original.Value)
	assert.ErrorIs(t, err, ErrNotFound)

	// The replacement is live.
	_, err = rotator.Redeem(context.Background(), replacement.Value)
	assert.NoError(t, err)
}

func TestRedeemExpiredTokenDestroysRecord(t *testing.T) {
	store := newFakeStore()
	rotator := newTestRotator(t, store)
	rotator.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	token, err := rotator.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	rotator.now = time.Now
	_, err = rotator.Redeem(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrExpired)

	// Expiry is a terminal state: the record must be gone.
	_, err = store.Consume(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = rotator.Redeem(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeAll(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := rotator.Issue(ctx, "alice")
		require.NoError(t, err)
	}
	bobToken, err := rotator.Issue(ctx, "bob")
	require.NoError(t, err)

	count, err := rotator.RevokeAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Other users' tokens are untouched.
	_, err = rotator.Redeem(ctx, bobToken.Value)
	assert.NoError(t, err)

	// A second revoke finds nothing and is an error by contract.
	_, err = rotator.RevokeAll(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeAllWithZeroTokens(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())

	_, err := rotator.RevokeAll(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemConcurrentSingleWinner(t *testing.T) {
	rotator := newTestRotator(t, newFakeStore())

	original, err := rotator.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := rotator.Redeem(context.Background(), original.Value)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, success, "exactly one concurrent redemption may win")
}

func TestNewRotatorValidation(t *testing.T) {
	store := newFakeStore()

	_, err := NewRotator(nil, Config{TTL: time.Hour})
	assert.Error(t, err)

	_, err = NewRotator(store, Config{TTL: 0})
	assert.Error(t, err)

	_, err = NewRotator(store, Config{TTL: time.Hour, TokenBytes: 32})
	assert.Error(t, err)

	_, err = NewRotator(store, Config{TTL: time.Hour, TokenBytes: 96})
	assert.NoError(t, err)
}
