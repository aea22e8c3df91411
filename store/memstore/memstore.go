package memstore

import (
	"context"
	"sync"

	authgate "github.com/tallforge/authgate"
	"github.com/tallforge/authgate/refresh"
)

// UserStore is an in-memory [authgate.UserStore].
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*authgate.User
	byEmail map[string]*authgate.User
}

// NewUserStore returns an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*authgate.User),
		byEmail: make(map[string]*authgate.User),
	}
}

// GetByID returns the user with the given id, or (nil, nil) when absent.
func (s *UserStore) GetByID(_ context.Context, id string) (*authgate.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// GetByEmail returns the user with the given email (exact match), or
// (nil, nil) when absent.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*authgate.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// Create inserts the user. The email uniqueness check and the insert happen
// under one lock, so concurrent duplicate sign-ups cannot both succeed;
// the loser gets [authgate.ErrEmailExists].
func (s *UserStore) Create(_ context.Context, user *authgate.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return authgate.ErrEmailExists
	}
	cp := *user
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = &cp
	return nil
}

// TokenStore is an in-memory [refresh.Store].
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*refresh.Token
}

// NewTokenStore returns an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]*refresh.Token)}
}

// Insert persists the token record keyed by its opaque value.
func (s *TokenStore) Insert(_ context.Context, token *refresh.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[cp.Value] = &cp
	return nil
}

// Consume removes and returns the record for value under one lock, so of
// two concurrent consumers exactly one receives it; the other gets
// [refresh.ErrNotFound].
func (s *TokenStore) Consume(_ context.Context, value string) (*refresh.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	delete(s.tokens, value)
	return token, nil
}

// DeleteByUser removes every token owned by userID and returns the count.
func (s *TokenStore) DeleteByUser(_ context.Context, userID string) (int, error) {
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

// Len reports the number of live token records. Test helper.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
