package repository

import (
	"context"
	"fmt"
	"time"

	"OddsEngine/pkg/cache"
)

// RedisDedupStore shares fingerprint state across engine instances through
// Redis. A fingerprint is a lock held for the cooldown window.
type RedisDedupStore struct {
	rc *cache.RedisCache
}

// NewRedisDedupStore wraps an existing Redis cache connection.
func NewRedisDedupStore(rc *cache.RedisCache) *RedisDedupStore {
	return &RedisDedupStore{rc: rc}
}

// Seen acquires the fingerprint key with the cooldown as TTL; failure to
// acquire means another emission already holds it.
func (s *RedisDedupStore) Seen(ctx context.Context, fingerprint string, cooldown time.Duration) (bool, error) {
	acquired, err := s.rc.TryLock(ctx, "dedup:"+fingerprint, cooldown)
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return !acquired, nil
}
