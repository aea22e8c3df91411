package authgate

import (
	"context"
	"time"
)

// User is the stored identity record. PasswordHash never leaves the store
// boundary: every outward-facing shape is a [UserSummary].
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName is the derived presentation name embedded in access-token
// claims: first and last name joined by a single space.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Summary returns the outward-facing projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// UserSummary is the caller-visible user shape. It never carries the
// password hash.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserStore is the credential-store interface the Engine consumes. Lookups
// return (nil, nil) when no record matches; an error only signals a store
// failure. Create must reject a duplicate email with [ErrEmailExists] —
// implementations back this with a unique constraint or equivalent, since
// the Engine's own pre-check is advisory under concurrency.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
}

// SignUpInput is the input for [Engine.SignUp].
type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TokenPair is an access token and the refresh token that can later be
// exchanged for its successor.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// SignInResult is returned by [Engine.SignIn].
type SignInResult struct {
	User   UserSummary
	Tokens TokenPair
}

// Identity is the verified caller identity produced by
// [Engine.Authenticate] and injected into request contexts by
// middleware.Guard.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}
