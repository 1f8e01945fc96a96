package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryDedupStore keeps live-opportunity fingerprints in process memory.
// Used when Redis is disabled and in tests.
type MemoryDedupStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryDedupStore creates an empty store.
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen reports whether the fingerprint fired within the cooldown and records
// the current emission when it did not.
func (s *MemoryDedupStore) Seen(_ context.Context, fingerprint string, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if at, ok := s.seen[fingerprint]; ok && now.Sub(at) < cooldown {
		return true, nil
	}
	s.seen[fingerprint] = now

	// Opportunistic prune so long-running scanners do not grow unbounded.
	if len(s.seen) > 4096 {
		for fp, at := range s.seen {
			if now.Sub(at) >= cooldown {
				delete(s.seen, fp)
			}
		}
	}
	return false, nil
}
