package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey returns the key marking a logged-out token id.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// RevokedSessionsKey returns the key holding the cutoff before which every
// token of a profile is revoked.
func (r *CacheKeyStruct) RevokedSessionsKey(profileID string) string {
	return fmt.Sprintf("auth:revoked_sessions:%s", profileID)
}

// StatisticsKey returns the cache key for a statistics query. Empty parts
// are kept so that "no bound" and "bound" never collide.
func (r *CacheKeyStruct) StatisticsKey(dimension, dimensionID, from, to string) string {
	return fmt.Sprintf("stats:%s:%s:%s:%s", dimension, dimensionID, from, to)
}

// StatisticsPattern matches every cached statistics entry.
func (r *CacheKeyStruct) StatisticsPattern() string {
	return "stats:*"
}

var CacheKey = NewCacheKeyStruct()
