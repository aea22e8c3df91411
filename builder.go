package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/tallforge/authgate/denylist"
	"github.com/tallforge/authgate/jwt"
	"github.com/tallforge/authgate/password"
	"github.com/tallforge/authgate/refresh"
	"github.com/tallforge/authgate/store/redistore"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config     Config
	redis      *redis.Client
	users      UserStore
	tokenStore refresh.Store

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the revocation registry and,
// unless [Builder.WithTokenStore] overrides it, the bundled Redis refresh
// token store.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore supplies the credential store.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithTokenStore overrides the refresh-token store, e.g. with
// store/pgstore or store/memstore.
func (b *Builder) WithTokenStore(store refresh.Store) *Builder {
	b.tokenStore = store
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Engine. A Builder builds
// at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	registry, err := denylist.NewRegistry(b.redis, cfg.Denylist.KeyPrefix)
	if err != nil {
		return nil, err
	}

	tokenStore := b.tokenStore
	if tokenStore == nil {
		tokenStore, err = redistore.New(b.redis, "")
		if err != nil {
			return nil, err
		}
	}

	rotator, err := refresh.NewRotator(tokenStore, refresh.Config{
		TTL:        cfg.Refresh.TTL,
		TokenBytes: cfg.Refresh.TokenBytes,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:    cfg.JWT.Secret,
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Leeway:    cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	b.built = true
	return &Engine{
		config:   cfg,
		users:    b.users,
		rotator:  rotator,
		registry: registry,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  NewMetrics(cfg.Metrics.Enabled),
	}, nil
}
