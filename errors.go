package authgate

import (
	"errors"

	"github.com/tallforge/authgate/refresh"
)

var (
	// ErrEmailExists is returned by sign-up when a user with the same email
	// already exists.
	ErrEmailExists = errors.New("email already exists")
	// ErrInvalidCredentials is returned by sign-in for an unknown email or
	// a failed password check. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a user lookup by id finds nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound is returned when a presented refresh token does not
	// exist or was already redeemed, and by sign-out when the user has no
	// refresh tokens to revoke.
	ErrTokenNotFound = refresh.ErrNotFound
	// ErrTokenExpired is returned when a presented refresh token exists but
	// its expiry has passed.
	ErrTokenExpired = refresh.ErrExpired
	// ErrUnauthorized is returned when no valid identity accompanies a
	// request: a missing, forged, expired, or denylisted access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
