package debate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// sessionCache holds resident session mirrors keyed by session ID. Entries
// expire after a TTL of inactivity and are evicted by a background sweeper,
// bounding memory in long-running deployments. Eviction behaves like a
// process restart for that session: the pause flag is forgotten and the next
// access rehydrates turn order from the store.
type sessionCache struct {
	mu      sync.Mutex
	entries map[int64]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	state      *State
	lastAccess time.Time
}

func newSessionCache(ttl time.Duration) *sessionCache {
	return &sessionCache{
		entries: make(map[int64]*cacheEntry),
		ttl:     ttl,
	}
}

// get returns the resident mirror for a session, touching its access time.
func (c *sessionCache) get(sessionID int64) *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sessionID]
	if !ok {
		return nil
	}
	entry.lastAccess = time.Now()
	return entry.state
}

// put registers a mirror under its session ID, replacing any resident one.
func (c *sessionCache) put(state *State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[state.ID] = &cacheEntry{
		state:      state,
		lastAccess: time.Now(),
	}
}

// remove evicts a mirror if present.
func (c *sessionCache) remove(sessionID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// len returns the number of resident mirrors.
func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweep evicts mirrors idle longer than the TTL and returns how many were
// removed.
func (c *sessionCache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, entry := range c.entries {
		if now.Sub(entry.lastAccess) > c.ttl {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartCacheSweeper runs a background goroutine that periodically evicts
// idle session mirrors until ctx is cancelled.
func (o *Orchestrator) StartCacheSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session cache sweeper started", "interval", interval, "ttl", o.cache.ttl)

		for {
			select {
			case <-ticker.C:
				if evicted := o.cache.sweep(time.Now()); evicted > 0 {
					slog.Info("Evicted idle session mirrors", "count", evicted, "resident", o.cache.len())
				}
			case <-ctx.Done():
				slog.Info("Session cache sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
