package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPassBytes = 8

// Hasher hashes and verifies passwords using bcrypt. The zero value is not
// usable; construct instances through [NewHasher].
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. A cost of zero
// selects bcrypt.DefaultCost; costs outside the bcrypt range are rejected.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Hasher{cost: cost}, nil
}

// Cost reports the configured bcrypt cost.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash produces a self-describing bcrypt digest of password. The digest
// embeds algorithm version, cost, and a fresh random salt.
//
// Password bytes are used exactly as provided (no Unicode normalization).
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < minPassBytes {
		return "", errors.New("password must be at least 8 bytes")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches the stored digest. The comparison
// runs in time governed by the bcrypt cost embedded in the digest.
//
// A malformed or truncated digest verifies as false; callers never see an
// error for a bad stored value, so a corrupt row degrades to a failed login
// instead of interrupting the caller.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
