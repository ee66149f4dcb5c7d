// internal/pkg/ratelimit/rate_limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginMaxAttempts = 5
	loginWindow      = 15 * time.Minute
)

// RateLimiter throttles login attempts per ip+email using redis counters.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt checks if login attempt is allowed
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, loginWindow)
	}

	remaining := loginMaxAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= loginMaxAttempts, remaining, nil
}

// GetRemainingAttempts returns remaining login attempts
func (r *RateLimiter) GetRemainingAttempts(ctx context.Context, ip, email string) (int64, error) {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)

	count, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return loginMaxAttempts, nil // Full attempts available
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}

	remaining := int64(loginMaxAttempts) - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// ResetLoginAttempts resets the login attempt counter
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return r.client.Del(ctx, key).Err()
}
