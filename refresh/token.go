package refresh

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// MinTokenBytes is the smallest allowed entropy for an opaque refresh token.
const MinTokenBytes = 64

// Token is a single refresh-token record: the opaque value, its owner, and
// its absolute expiry. Tokens reference their owning user by id only; the
// record is stored and loaded independently of the user entity.
type Token struct {
	ID        string
	UserID    string
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the token's expiry is at or before now.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// NewOpaque returns a cryptographically random opaque token value of n bytes
// of entropy, encoded as compact printable base64url.
func NewOpaque(n int) (string, error) {
	if n < MinTokenBytes {
		return "", errors.New("refresh token entropy below minimum")
	}

	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
