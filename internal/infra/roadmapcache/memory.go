package roadmapcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the roadmap cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get implements roadmap.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (domain.Roadmap, bool, error) {
	c.mu.RLock()
	record, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Roadmap{}, false, nil
	}
	if !record.expiresAt.IsZero() && record.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return domain.Roadmap{}, false, nil
	}
	var roadmap domain.Roadmap
	if err := json.Unmarshal(record.payload, &roadmap); err != nil {
		return domain.Roadmap{}, false, err
	}
	return roadmap, true, nil
}

// Set stores the roadmap with optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, roadmap domain.Roadmap, ttl time.Duration) error {
	payload, err := json.Marshal(roadmap)
	if err != nil {
		return err
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{payload: payload, expiresAt: exp}
	return nil
}

var _ domain.Cache = (*MemoryCache)(nil)
