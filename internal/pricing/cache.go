package pricing

import (
	"context"
	"sync"
	"time"
)

// CachedRateSource memoizes another RateSource for a fixed TTL so a burst of
// quotes during a generation run hits the backing source once.
type CachedRateSource struct {
	mu      sync.RWMutex
	source  RateSource
	now     func() time.Time
	ttl     time.Duration
	cached  Rates
	expires time.Time
	loaded  bool
}

// NewCachedRateSource wraps source with a TTL cache. A nil now falls back to
// time.Now; a non-positive ttl defaults to five minutes.
func NewCachedRateSource(source RateSource, ttl time.Duration, now func() time.Time) *CachedRateSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &CachedRateSource{source: source, now: now, ttl: ttl}
}

// Rates implements RateSource.
func (c *CachedRateSource) Rates(ctx context.Context) (Rates, error) {
	c.mu.RLock()
	if c.loaded && c.now().Before(c.expires) {
		rates := c.cached
		c.mu.RUnlock()
		return rates, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Before(c.expires) {
		return c.cached, nil
	}

	rates, err := c.source.Rates(ctx)
	if err != nil {
		return Rates{}, err
	}
	c.cached = rates
	c.expires = c.now().Add(c.ttl)
	c.loaded = true
	return rates, nil
}

// Invalidate drops the cached table so the next call reloads.
func (c *CachedRateSource) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
