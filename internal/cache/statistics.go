package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// StatisticsCache stores serialized statistics summaries in Redis. A nil
// client or a non-positive TTL turns every operation into a no-op.
type StatisticsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatisticsCache creates a StatisticsCache.
func NewStatisticsCache(rdb *redis.Client, ttl time.Duration) *StatisticsCache {
	return &StatisticsCache{rdb: rdb, ttl: ttl}
}

func (c *StatisticsCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get decodes the cached value at key into dst and reports whether it was found.
func (c *StatisticsCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached statistics: %w", err)
	}
	return true, nil
}

// Set stores v at key for the configured TTL.
func (c *StatisticsCache) Set(ctx context.Context, key string, v interface{}) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops every cached statistics entry.
func (c *StatisticsCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, config.CacheKey.StatisticsPattern(), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
