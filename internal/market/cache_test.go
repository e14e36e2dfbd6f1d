package market

import (
	"context"
	"fmt"
	"testing"
	"time"

	"financegpt/internal/models"

	"github.com/shopspring/decimal"
)

type countingProvider struct {
	calls int
	fail  bool
}

func (p *countingProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	p.calls++
	if p.fail {
		return nil, fmt.Errorf("upstream down")
	}
	return &models.Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(150.00),
		Volume:    1000,
		FetchedAt: time.Now(),
	}, nil
}

func newTestCache(p Provider, ttl time.Duration) (*QuoteCache, *time.Time, *[]time.Duration) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	c := NewQuoteCache(p, ttl, 500*time.Millisecond)
	c.now = func() time.Time { return clock }
	c.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return c, &clock, &sleeps
}

func TestQuoteCache_HitWithinTTL(t *testing.T) {
	p := &countingProvider{}
	c, _, sleeps := newTestCache(p, 60*time.Second)

	if _, err := c.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	if _, err := c.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if p.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", p.calls)
	}
	// Rate-limit delay applies only on the miss.
	if len(*sleeps) != 1 {
		t.Errorf("Expected 1 sleep (miss only), got %d", len(*sleeps))
	}
}

func TestQuoteCache_ExpiryRefetches(t *testing.T) {
	p := &countingProvider{}
	c, clock, _ := newTestCache(p, 60*time.Second)

	if _, err := c.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	*clock = clock.Add(61 * time.Second)

	if _, err := c.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("Expected refetch after TTL, got %d calls", p.calls)
	}
}

func TestQuoteCache_FailureNotCached(t *testing.T) {
	p := &countingProvider{fail: true}
	c, _, _ := newTestCache(p, 60*time.Second)

	if _, err := c.Get(context.Background(), "AAPL"); err == nil {
		t.Fatal("Expected error from failing provider")
	}

	p.fail = false
	q, err := c.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Expected recovery after provider came back: %v", err)
	}
	if q.Symbol != "AAPL" {
		t.Errorf("Expected AAPL quote, got %s", q.Symbol)
	}
	if p.calls != 2 {
		t.Errorf("Expected 2 provider calls (failure not cached), got %d", p.calls)
	}
}

func TestQuoteCache_PerSymbolEntries(t *testing.T) {
	p := &countingProvider{}
	c, _, _ := newTestCache(p, 60*time.Second)

	c.Get(context.Background(), "AAPL")
	c.Get(context.Background(), "msft") // normalized to MSFT
	c.Get(context.Background(), "MSFT")

	if p.calls != 2 {
		t.Errorf("Expected 2 provider calls for 2 symbols, got %d", p.calls)
	}
}
