package authgate_test

import (
	"context"
	"sync"
	"testing"

	authgate "github.com/tallforge/authgate"
)

// Concurrent redemption of the same refresh token must produce exactly
// one winner; every other caller observes the token as already spent.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signUp(t, "alice@x.com")
	session, err := h.engine.SignIn(ctx, "alice@x.com", "password123!")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.engine.Refresh(ctx, session.Tokens.RefreshToken)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch err {
		case nil:
			won++
		case authgate.ErrTokenNotFound:
			lost++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	if lost != workers-1 {
		t.Fatalf("losers = %d, want %d", lost, workers-1)
	}
}
