// Package cache holds the Redis-backed caches of the service together with
// in-process fallbacks used when no Redis URL is configured.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until their natural expiry, and
// per-profile cutoffs that revoke every token issued up to a point in time.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeSessions(ctx context.Context, profileID string, cutoff time.Time, ttl time.Duration) error
	SessionsRevokedAt(ctx context.Context, profileID string) (time.Time, bool, error)
}

// RedisDenylist stores revoked token ids as expiring Redis keys.
type RedisDenylist struct {
	rdb *redis.Client
}

// NewRedisDenylist creates a RedisDenylist.
func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDenylist) RevokeSessions(ctx context.Context, profileID string, cutoff time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, config.CacheKey.RevokedSessionsKey(profileID), cutoff.UnixNano(), ttl).Err()
}

func (d *RedisDenylist) SessionsRevokedAt(ctx context.Context, profileID string) (time.Time, bool, error) {
	v, err := d.rdb.Get(ctx, config.CacheKey.RevokedSessionsKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	nanos, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

type sessionCutoff struct {
	at      time.Time
	expires time.Time
}

// MemoryDenylist keeps revoked token ids in process memory.
type MemoryDenylist struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	sessions map[string]sessionCutoff
	now      func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		revoked:  make(map[string]time.Time),
		sessions: make(map[string]sessionCutoff),
		now:      time.Now,
	}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.revoked {
		if now.After(exp) {
			delete(d.revoked, id)
		}
	}
	d.revoked[jti] = now.Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[jti]
	if !ok {
		return false, nil
	}
	if d.now().After(exp) {
		delete(d.revoked, jti)
		return false, nil
	}
	return true, nil
}

func (d *MemoryDenylist) RevokeSessions(_ context.Context, profileID string, cutoff time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[profileID] = sessionCutoff{at: cutoff, expires: d.now().Add(ttl)}
	return nil
}

func (d *MemoryDenylist) SessionsRevokedAt(_ context.Context, profileID string) (time.Time, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.sessions[profileID]
	if !ok {
		return time.Time{}, false, nil
	}
	if d.now().After(c.expires) {
		delete(d.sessions, profileID)
		return time.Time{}, false, nil
	}
	return c.at, true, nil
}
