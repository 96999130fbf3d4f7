package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResendCooldown = time.Minute

// ResendThrottle rate-limits confirmation-email resends per address.
// Key format: resend:<lowercased email>
type ResendThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewResendThrottle creates a throttle with the given cooldown window.
func NewResendThrottle(client *redis.Client, cooldown time.Duration) *ResendThrottle {
	if cooldown <= 0 {
		cooldown = defaultResendCooldown
	}
	return &ResendThrottle{client: client, cooldown: cooldown}
}

// Allow reserves the cooldown window for the address. It reports false when a
// resend was already requested inside the window.
func (t *ResendThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("resend throttle: %w", err)
	}
	return ok, nil
}

func (t *ResendThrottle) key(email string) string {
	return "resend:" + strings.ToLower(email)
}
