// Package cache provides Redis-based caching for leaderboard reads.
// The cache is never the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/infra/storage"
)

// ErrCacheMiss is returned when a key is absent or too shallow.
var ErrCacheMiss = errors.New("cache miss")

// DefaultTTL is how long a ranked list stays cached.
const DefaultTTL = time.Minute

// RedisClient is an interface for Redis operations.
// This allows for easy mocking in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// LeaderboardCache keeps the most recently fetched ranked list.
type LeaderboardCache struct {
	client     RedisClient
	expiration time.Duration
	key        string
}

// NewLeaderboardCache creates a cache. A non-positive ttl selects DefaultTTL.
func NewLeaderboardCache(client RedisClient, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LeaderboardCache{
		client:     client,
		expiration: ttl,
		key:        "biohome:leaderboard:top",
	}
}

// cachedTop is the stored form: the list fetched for Depth entries.
type cachedTop struct {
	Depth   int                  `json:"depth"`
	Entries []storage.ScoreEntry `json:"entries"`
}

// GetTop returns the first n cached entries. It misses when nothing is
// cached or the cached list was fetched for fewer than n.
func (c *LeaderboardCache) GetTop(ctx context.Context, n int) ([]storage.ScoreEntry, error) {
	data, err := c.client.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}

	var cached cachedTop
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}
	if cached.Depth < n && len(cached.Entries) >= cached.Depth {
		return nil, ErrCacheMiss
	}
	if len(cached.Entries) > n {
		cached.Entries = cached.Entries[:n]
	}
	return cached.Entries, nil
}

// SetTop caches the list fetched for depth entries.
func (c *LeaderboardCache) SetTop(ctx context.Context, depth int, entries []storage.ScoreEntry) error {
	data, err := json.Marshal(cachedTop{Depth: depth, Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	return c.client.Set(ctx, c.key, data, c.expiration)
}

// Invalidate drops the cached list.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key)
}
