package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 32

// Config holds the signing parameters for access tokens. Instances are
// configured during initialization and treated as immutable afterwards.
type Config struct {
	// Secret is the symmetric HS256 signing key. At least 32 bytes.
	Secret []byte
	// AccessTTL is the lifetime of issued tokens, measured from issuance.
	AccessTTL time.Duration
	// Issuer and Audience are fixed per deployment and verified on parse
	// when non-empty.
	Issuer   string
	Audience string
	// Leeway tolerates clock skew during expiry validation. Optional,
	// capped at two minutes.
	Leeway time.Duration
}

// Manager signs and verifies access tokens with a single symmetric key.
// Safe for concurrent use after construction.
type Manager struct {
	config Config
}

// Claims is the claim set embedded in every access token: the registered
// claims plus the user's email and derived display name.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Issuer != "" && strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("issuer must not be blank")
	}
	if cfg.Audience != "" && strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("audience must not be blank")
	}
	return &Manager{config: cfg}, nil
}

// Issue builds and signs an access token for the given subject. The expiry
// is now + AccessTTL; issuer and audience come from the configuration.
//
// Issue performs no input validation beyond signing: the caller is expected
// to pass an authenticated user's fields.
func (m *Manager) Issue(subject, email, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the signature, expiry, issuer, and audience of tokenStr and
// returns its claims. Only HS256 is accepted.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(m.parserOptions()...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Expiry returns the expiry instant of a token whose signature verifies,
// regardless of whether the token has already expired. Sign-out uses this to
// compute the remaining denylist TTL for the presented access token.
func (m *Manager) Expiry(tokenStr string) (time.Time, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc)
	if err != nil {
		return time.Time{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

func (m *Manager) parserOptions() []jwt.ParserOption {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}
	return options
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	return m.config.Secret, nil
}
