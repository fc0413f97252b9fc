package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/gymapp/internal/metrics"
	"github.com/coocood/freecache"
)

// Cache holds raw upstream responses keyed by request URL. Payloads live in a
// size-bounded freecache; insert times are tracked here so that expired
// entries can be purged by EvictExpired on whatever schedule the host picks.
// An entry older than the TTL is never served, even before it is purged.
type Cache struct {
	mu     sync.Mutex
	store  *freecache.Cache
	stored map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewCache creates a cache of roughly sizeBytes that serves entries for ttl.
func NewCache(sizeBytes int, ttl time.Duration) *Cache {
	return &Cache{
		store:  freecache.NewCache(sizeBytes),
		stored: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the payload for key if it is younger than the TTL.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.stored[key]
	if !ok || c.now().Sub(at) >= c.ttl {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, false
	}
	data, err := c.store.Get([]byte(key))
	if err != nil {
		// dropped by freecache under size pressure
		delete(c.stored, key)
		metrics.CacheEntries.Set(float64(len(c.stored)))
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheHit).Inc()
	return data, true
}

// Set stores data under key. Payloads too large for the cache are skipped.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expire := int(c.ttl / time.Second)
	if expire < 1 {
		expire = 1
	}
	if err := c.store.Set([]byte(key), data, expire); err != nil {
		return
	}
	c.stored[key] = c.now()
	metrics.CacheEntries.Set(float64(len(c.stored)))
}

// EvictExpired removes every entry stored at or before now minus the TTL
// and returns how many were removed.
func (c *Cache) EvictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, at := range c.stored {
		if now.Sub(at) >= c.ttl {
			c.store.Del([]byte(key))
			delete(c.stored, key)
			n++
		}
	}
	if n > 0 {
		metrics.CacheEvictionsTotal.Add(float64(n))
	}
	metrics.CacheEntries.Set(float64(len(c.stored)))
	return n
}

// Len returns the number of tracked entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stored)
}

// RunJanitor calls EvictExpired every interval until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := c.EvictExpired(now); n > 0 {
				log.Debug("catalog cache sweep", "evicted", n, "remaining", c.Len())
			}
		}
	}
}
