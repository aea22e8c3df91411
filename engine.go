package authgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallforge/authgate/denylist"
	"github.com/tallforge/authgate/jwt"
	"github.com/tallforge/authgate/password"
	"github.com/tallforge/authgate/refresh"
)

// Engine orchestrates credential verification, token issuance, rotation,
// and revocation. Construct instances through [Builder.Build]; a built
// Engine is immutable and safe for concurrent use.
//
// Each operation runs as an independent unit of work over the shared store
// and registry: there is no in-process locking around multi-step sequences,
// no cross-step transaction, and no compensating rollback. The races that
// leaves open are closed by the stores (unique email constraint, atomic
// consume), not here.
type Engine struct {
	config   Config
	users    UserStore
	rotator  *refresh.Rotator
	registry *denylist.Registry
	hasher   *password.Hasher
	tokens   *jwt.Manager
	metrics  *Metrics
}

// SignUp registers a new user and returns its summary. A duplicate email
// fails with [ErrEmailExists]. The existence pre-check here is advisory —
// two concurrent sign-ups can both pass it — so the store's Create is the
// authoritative uniqueness gate.
func (e *Engine) SignUp(ctx context.Context, input SignUpInput) (*UserSummary, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	existing, err := e.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("look up email: %w", err)
	}
	if existing != nil {
		e.metricInc(MetricSignUpConflict)
		return nil, ErrEmailExists
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			e.metricInc(MetricSignUpConflict)
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	e.metricInc(MetricSignUpSuccess)
	summary := user.Summary()
	return &summary, nil
}

// SignIn verifies the email/password pair and, on success, issues an access
// token and persists a fresh refresh token. An unknown email and a wrong
// password both fail with the identical [ErrInvalidCredentials], so callers
// cannot enumerate accounts from the error shape.
func (e *Engine) SignIn(ctx context.Context, email, pass string) (*SignInResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up email: %w", err)
	}
	if user == nil || !e.hasher.Verify(pass, user.PasswordHash) {
		e.metricInc(MetricSignInFailure)
		return nil, ErrInvalidCredentials
	}

	pair, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSignInSuccess)
	return &SignInResult{User: user.Summary(), Tokens: *pair}, nil
}

// Refresh redeems the presented refresh token and returns its replacement
// paired with a fresh access token. The presented value is consumed
// atomically before the replacement exists: a second redemption of the same
// value fails with [ErrTokenNotFound], an expired one with
// [ErrTokenExpired].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	replacement, err := e.rotator.Redeem(ctx, refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	user, err := e.users.GetByID(ctx, replacement.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up token owner: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	access, err := e.tokens.Issue(user.ID, user.Email, user.DisplayName())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	e.metricInc(MetricRefreshSuccess)
	return &TokenPair{AccessToken: access, RefreshToken: replacement.Value}, nil
}

// SignOut revokes every refresh token owned by userID, then denylists the
// presented access token for its remaining validity. A user with zero
// refresh tokens fails with [ErrTokenNotFound] before the denylist step —
// sign-out without a live session is an error by contract, not a no-op.
// There is no compensating transaction: a denylist failure does not restore
// the already-revoked refresh tokens.
func (e *Engine) SignOut(ctx context.Context, userID, accessToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if _, err := e.rotator.RevokeAll(ctx, userID); err != nil {
		return err
	}

	expiresAt, err := e.tokens.Expiry(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := e.registry.Deny(ctx, accessToken, expiresAt); err != nil {
		return fmt.Errorf("denylist access token: %w", err)
	}

	e.metricInc(MetricSignOut)
	return nil
}

// GetUserByID returns the summary of the user with the given id, or
// [ErrUserNotFound].
func (e *Engine) GetUserByID(ctx context.Context, id string) (*UserSummary, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	summary := user.Summary()
	return &summary, nil
}

// Authenticate resolves a bearer access token into a verified [Identity].
// The revocation registry is consulted before the signature so a revoked
// token is rejected even while cryptographically valid. Any failure maps to
// [ErrUnauthorized].
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	denied, err := e.registry.IsDenied(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("probe denylist: %w", err)
	}
	if denied {
		e.metricInc(MetricDenylistHit)
		return nil, ErrUnauthorized
	}

	claims, err := e.tokens.Parse(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return &Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() map[MetricID]uint64 {
	if e == nil {
		return map[MetricID]uint64{}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	access, err := e.tokens.Issue(user.ID, user.Email, user.DisplayName())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	token, err := e.rotator.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: token.Value}, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
