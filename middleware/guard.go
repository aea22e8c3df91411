package middleware

import (
	"context"
	"net/http"
	"strings"

	authgate "github.com/tallforge/authgate"
)

type identityContextKey struct{}

// IdentityFromContext returns the verified identity injected by [Guard],
// if any.
func IdentityFromContext(ctx context.Context) (*authgate.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*authgate.Identity)
	return identity, ok
}

// Guard returns middleware that authenticates the bearer token on every
// request: revocation probe first, then signature and expiry. On success
// the verified [authgate.Identity] is attached to the request context;
// handlers retrieve it with [IdentityFromContext] and pass the subject id
// on explicitly.
func Guard(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Denier is the revocation probe [DenyOnly] consults.
// *denylist.Registry satisfies it.
type Denier interface {
	IsDenied(ctx context.Context, token string) (bool, error)
}

// DenyOnly returns middleware that rejects requests whose bearer token is
// present in the revocation registry, without verifying the token itself.
// Requests without a bearer token pass through untouched.
func DenyOnly(denier Denier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			denied, err := denier.IsDenied(r.Context(), token)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if denied {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
