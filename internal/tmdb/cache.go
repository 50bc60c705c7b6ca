package tmdb

import (
	"sync"
	"time"
)

// regionCache memoizes the provider catalog per region for the lifetime
// of one client. Entries are never invalidated mid-session.
type regionCache struct {
	mu      sync.Mutex
	entries map[string]regionEntry
	ttl     time.Duration
}

type regionEntry struct {
	providers map[int64]string
	expiresAt time.Time
}

func newRegionCache() *regionCache {
	return &regionCache{
		entries: make(map[string]regionEntry),
		ttl:     24 * time.Hour,
	}
}

func (c *regionCache) Get(region string) (map[int64]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[region]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.entries, region)
		return nil, false
	}
	out := make(map[int64]string, len(entry.providers))
	for id, name := range entry.providers {
		out[id] = name
	}
	return out, true
}

func (c *regionCache) Set(region string, providers map[int64]string) {
	out := make(map[int64]string, len(providers))
	for id, name := range providers {
		out[id] = name
	}
	c.mu.Lock()
	c.entries[region] = regionEntry{
		providers: out,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
