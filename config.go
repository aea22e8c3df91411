package authgate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallforge/authgate/refresh"
)

// Config holds all engine parameters. Instances are configured during
// initialization and treated as immutable after [Builder.Build].
type Config struct {
	JWT      JWTConfig
	Refresh  RefreshConfig
	Denylist DenylistConfig
	Password PasswordConfig
	Metrics  MetricsConfig
}

// JWTConfig controls access-token issuance.
type JWTConfig struct {
	// Secret is the symmetric HS256 signing key. At least 32 bytes.
	Secret []byte
	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// Issuer and Audience are fixed per deployment and embedded in every
	// issued token.
	Issuer   string
	Audience string
	// Leeway tolerates clock skew during validation. Optional.
	Leeway time.Duration
}

// RefreshConfig controls refresh-token rotation.
type RefreshConfig struct {
	// TTL is the refresh-token lifetime.
	TTL time.Duration
	// TokenBytes is the opaque-value entropy; zero selects
	// refresh.MinTokenBytes.
	TokenBytes int
}

// DenylistConfig controls the revocation registry.
type DenylistConfig struct {
	// KeyPrefix namespaces denylist keys in Redis. Empty selects the
	// denylist package default.
	KeyPrefix string
}

// PasswordConfig controls credential hashing.
type PasswordConfig struct {
	// BcryptCost is the bcrypt work factor; zero selects
	// bcrypt.DefaultCost.
	BcryptCost int
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. The JWT secret is
// deliberately absent and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL:        7 * 24 * time.Hour,
			TokenBytes: refresh.MinTokenBytes,
		},
	}
}

// Validate reports the first configuration problem found, if any.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT.Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway out of range")
	}
	if c.JWT.Issuer != "" && strings.TrimSpace(c.JWT.Issuer) == "" {
		return errors.New("JWT.Issuer must not be blank")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT.Audience must not be blank")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh.TTL must be positive")
	}
	if c.Refresh.TokenBytes != 0 && c.Refresh.TokenBytes < refresh.MinTokenBytes {
		return fmt.Errorf("Refresh.TokenBytes must be at least %d", refresh.MinTokenBytes)
	}
	if c.Password.BcryptCost != 0 &&
		(c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost) {
		return errors.New("Password.BcryptCost out of range")
	}
	return nil
}

type envConfig struct {
	JWTSecret         string        `env:"AUTHGATE_JWT_SECRET"`
	JWTIssuer         string        `env:"AUTHGATE_JWT_ISSUER"`
	JWTAudience       string        `env:"AUTHGATE_JWT_AUDIENCE"`
	AccessTTL         time.Duration `env:"AUTHGATE_ACCESS_TTL" envDefault:"15m"`
	Leeway            time.Duration `env:"AUTHGATE_JWT_LEEWAY" envDefault:"0"`
	RefreshTTL        time.Duration `env:"AUTHGATE_REFRESH_TTL" envDefault:"168h"`
	RefreshTokenBytes int           `env:"AUTHGATE_REFRESH_TOKEN_BYTES" envDefault:"64"`
	DenylistPrefix    string        `env:"AUTHGATE_DENYLIST_PREFIX"`
	BcryptCost        int           `env:"AUTHGATE_BCRYPT_COST" envDefault:"0"`
	MetricsEnabled    bool          `env:"AUTHGATE_METRICS_ENABLED" envDefault:"false"`
}

// ConfigFromEnv loads configuration from AUTHGATE_* environment variables on
// top of [DefaultConfig]. The result is not yet validated; Build validates.
func ConfigFromEnv() (Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte(e.JWTSecret)
	cfg.JWT.Issuer = e.JWTIssuer
	cfg.JWT.Audience = e.JWTAudience
	cfg.JWT.AccessTTL = e.AccessTTL
	cfg.JWT.Leeway = e.Leeway
	cfg.Refresh.TTL = e.RefreshTTL
	cfg.Refresh.TokenBytes = e.RefreshTokenBytes
	cfg.Denylist.KeyPrefix = e.DenylistPrefix
	cfg.Password.BcryptCost = e.BcryptCost
	cfg.Metrics.Enabled = e.MetricsEnabled
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}
