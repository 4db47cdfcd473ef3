package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptsPrefix = "login_attempts:"

// LoginThrottle counts login attempts per email in a fixed Redis window.
// A nil throttle or client allows everything.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle builds a throttle. maxAttempts <= 0 disables it.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.client != nil && t.maxAttempts > 0
}

func attemptKey(email string) string {
	return loginAttemptsPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Attempt reserves one login attempt for email and reports whether it is
// within the limit. The counter and the decision come from the same INCR, so
// concurrent attempts cannot exceed maxAttempts. The first attempt opens the
// window; a successful login clears it through Reset.
func (t *LoginThrottle) Attempt(ctx context.Context, email string) (bool, error) {
	if !t.enabled() {
		return true, nil
	}
	key := attemptKey(email)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 && t.window > 0 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(t.maxAttempts), nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if !t.enabled() {
		return nil
	}
	return t.client.Del(ctx, attemptKey(email)).Err()
}
