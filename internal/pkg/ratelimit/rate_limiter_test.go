package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client), mr
}

func TestCheckLoginAttemptAllowsUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= loginMaxAttempts; i++ {
		allowed, remaining, err := rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("attempt %d blocked, want allowed", i)
		}
		if want := int64(loginMaxAttempts - i); remaining != want {
			t.Errorf("attempt %d: remaining = %d, want %d", i, remaining, want)
		}
	}

	allowed, remaining, err := rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
	if err != nil {
		t.Fatalf("over-limit attempt: %v", err)
	}
	if allowed {
		t.Error("attempt past the limit allowed, want blocked")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestLoginAttemptsScopedByIPAndEmail(t *testing.T) {
	rl, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxAttempts+1; i++ {
		rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
	}

	allowed, _, err := rl.CheckLoginAttempt(ctx, "5.6.7.8", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("different ip blocked by another ip's attempts")
	}

	allowed, _, err = rl.CheckLoginAttempt(ctx, "1.2.3.4", "b@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("different email blocked by another email's attempts")
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	rl, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxAttempts+1; i++ {
		rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
	}

	mr.FastForward(loginWindow + time.Second)

	allowed, remaining, err := rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("attempt after window expiry blocked")
	}
	if remaining != loginMaxAttempts-1 {
		t.Errorf("remaining = %d, want %d", remaining, loginMaxAttempts-1)
	}
}

func TestResetLoginAttempts(t *testing.T) {
	rl, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxAttempts; i++ {
		rl.CheckLoginAttempt(ctx, "1.2.3.4", "a@x.com")
	}
	if err := rl.ResetLoginAttempts(ctx, "1.2.3.4", "a@x.com"); err != nil {
		t.Fatal(err)
	}

	remaining, err := rl.GetRemainingAttempts(ctx, "1.2.3.4", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if remaining != loginMaxAttempts {
		t.Errorf("remaining after reset = %d, want %d", remaining, loginMaxAttempts)
	}
}
