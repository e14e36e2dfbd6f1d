package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"financegpt/internal/models"
)

// QuoteCache memoizes quote lookups per symbol for a TTL, bounding the
// request rate to the upstream provider. A minimum inter-fetch delay is
// applied on cache miss only. Failures are never cached.
type QuoteCache struct {
	provider   Provider
	ttl        time.Duration
	fetchDelay time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

type cacheEntry struct {
	quote    *models.Quote
	cachedAt time.Time
}

// NewQuoteCache wraps a provider with a TTL cache.
func NewQuoteCache(p Provider, ttl, fetchDelay time.Duration) *QuoteCache {
	return &QuoteCache{
		provider:   p,
		ttl:        ttl,
		fetchDelay: fetchDelay,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Get returns a live cached quote, or fetches a fresh one from the provider.
// Expired entries are ignored, not deleted; a successful fetch supersedes them.
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	c.mu.Lock()
	if e, ok := c.entries[symbol]; ok && c.now().Sub(e.cachedAt) < c.ttl {
		c.mu.Unlock()
		return e.quote, nil
	}
	c.mu.Unlock()

	// Throttle fresh fetches to avoid hammering the upstream source.
	if c.fetchDelay > 0 {
		c.sleep(c.fetchDelay)
	}

	quote, err := c.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{quote: quote, cachedAt: c.now()}
	c.mu.Unlock()

	return quote, nil
}
