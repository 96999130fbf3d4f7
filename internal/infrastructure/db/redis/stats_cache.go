package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyclub/member-system/internal/core/ports"
)

const (
	statsKey        = "stats:roles"
	defaultStatsTTL = time.Minute
)

// StatsCache caches the role aggregation behind the admin dashboard so bursts
// of dashboard loads do not each run the Mongo aggregation.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached counts; ok is false on a miss.
func (c *StatsCache) Get(ctx context.Context) (ports.RoleCounts, bool, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache get: %w", err)
	}

	var counts ports.RoleCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, fmt.Errorf("stats cache decode: %w", err)
	}
	return counts, true, nil
}

// Set stores the counts for the cache TTL.
func (c *StatsCache) Set(ctx context.Context, counts ports.RoleCounts) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, c.ttl).Err()
}
