package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/tallforge/authgate"
	"github.com/tallforge/authgate/middleware"
	"github.com/tallforge/authgate/store/memstore"
)

func newTestEngine(t *testing.T) *authgate.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authgate.DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.BcryptCost = 4

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(memstore.NewUserStore()).
		WithTokenStore(memstore.NewTokenStore()).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	return engine
}

func signIn(t *testing.T, engine *authgate.Engine) (*authgate.SignInResult, string) {
	t.Helper()

	ctx := context.Background()
	summary, err := engine.SignUp(ctx, authgate.SignUpInput{
		Email:     "alice@x.com",
		Password:  "password123!",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	if err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}

	result, err := engine.SignIn(ctx, "alice@x.com", "password123!")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	return result, summary.ID
}

func guardedHandler(engine *authgate.Engine, captured **authgate.Identity) http.Handler {
	return middleware.Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "no identity", http.StatusInternalServerError)
			return
		}
		*captured = identity
		w.WriteHeader(http.StatusOK)
	}))
}

func TestGuardInjectsIdentity(t *testing.T) {
	engine := newTestEngine(t)
	result, userID := signIn(t, engine)

	var identity *authgate.Identity
	handler := guardedHandler(engine, &identity)

	req := httptest.NewRequest(http.MethodGet, "/user-information", nil)
	req.Header.Set("Authorization", "Bearer "+result.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if identity == nil || identity.UserID != userID {
		t.Fatalf("identity not injected: %+v", identity)
	}
	if identity.Email != "alice@x.com" || identity.DisplayName != "Alice Smith" {
		t.Fatalf("identity claims mismatch: %+v", identity)
	}
}

func TestGuardRejectsMissingBearer(t *testing.T) {
	engine := newTestEngine(t)

	var identity *authgate.Identity
	handler := guardedHandler(engine, &identity)

	for _, header := range []string{"", "Bearer ", "Basic abc", "token"} {
		req := httptest.NewRequest(http.MethodGet, "/user-information", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestGuardRejectsForgedToken(t *testing.T) {
	engine := newTestEngine(t)

	var identity *authgate.Identity
	handler := guardedHandler(engine, &identity)

	req := httptest.NewRequest(http.MethodGet, "/user-information", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardRejectsSignedOutToken(t *testing.T) {
	engine := newTestEngine(t)
	result, userID := signIn(t, engine)

	if err := engine.SignOut(context.Background(), userID, result.Tokens.AccessToken); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}

	var identity *authgate.Identity
	handler := guardedHandler(engine, &identity)

	req := httptest.NewRequest(http.MethodGet, "/user-information", nil)
	req.Header.Set("Authorization", "Bearer "+result.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: got %d", rec.Code)
	}
}

type staticDenier struct {
	denied map[string]bool
}

func (d staticDenier) IsDenied(_ context.Context, token string) (bool, error) {
	return d.denied[token], nil
}

func TestDenyOnly(t *testing.T) {
	denier := staticDenier{denied: map[string]bool{"revoked": true}}
	handler := middleware.DenyOnly(denier)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no bearer passes through", header: "", want: http.StatusNoContent},
		{name: "live token passes", header: "Bearer live", want: http.StatusNoContent},
		{name: "revoked token rejected", header: "Bearer revoked", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sign-out", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
