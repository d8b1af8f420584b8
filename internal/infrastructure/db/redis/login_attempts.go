package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockoutWindow = 24 * time.Hour

// LoginAttempts counts consecutive failed logins per account in Redis.
// Key format: login_failures:<user_id>. The counter expires window after the
// first failure of a streak.
type LoginAttempts struct {
	client *redis.Client
	window time.Duration
}

// NewLoginAttempts creates a tracker wrapping the given Redis client.
func NewLoginAttempts(client *redis.Client, window time.Duration) *LoginAttempts {
	if window <= 0 {
		window = defaultLockoutWindow
	}
	return &LoginAttempts{client: client, window: window}
}

// RecordFailure increments the failure counter and returns the new value.
func (l *LoginAttempts) RecordFailure(ctx context.Context, userID string) (int64, error) {
	key := l.key(userID)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return n, fmt.Errorf("expire login failures: %w", err)
		}
	}
	return n, nil
}

// Reset clears the failure counter.
func (l *LoginAttempts) Reset(ctx context.Context, userID string) error {
	if err := l.client.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

func (l *LoginAttempts) key(userID string) string {
	return "login_failures:" + userID
}
