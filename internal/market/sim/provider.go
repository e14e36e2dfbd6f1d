// Package sim is an offline market-data provider with random-walk prices.
// Useful for demos and development without network access.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"financegpt/internal/market"
	"financegpt/internal/models"

	"github.com/shopspring/decimal"
)

// Provider implements market.Provider with synthetic prices. Unknown symbols
// get a stable pseudo-random base price; each fetch drifts within ±2%.
type Provider struct {
	mu   sync.Mutex
	rng  *rand.Rand
	base map[string]float64
	open map[string]float64 // session opening price, for change %
}

var _ market.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		base: seedPrices(),
		open: make(map[string]float64),
	}
}

func seedPrices() map[string]float64 {
	return map[string]float64{
		"AAPL":  178.50,
		"MSFT":  415.20,
		"GOOGL": 141.80,
		"AMZN":  175.40,
		"TSLA":  199.95,
		"NVDA":  875.30,
		"^GSPC": 4900.50,
		"^DJI":  38750.25,
		"^IXIC": 15800.75,
	}
}

func (p *Provider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.base[symbol]
	if !ok {
		price = 50.0 + p.rng.Float64()*450.0
	}
	if _, ok := p.open[symbol]; !ok {
		p.open[symbol] = price
	}

	// Drift within ±2% per fetch.
	price += (p.rng.Float64() - 0.5) * price * 0.02
	p.base[symbol] = price

	open := p.open[symbol]
	change := (price - open) / open * 100

	return &models.Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(price).Round(2),
		ChangePercent: decimal.NewFromFloat(change).Round(2),
		Volume:        int64(p.rng.Intn(900000) + 100000),
		FetchedAt:     time.Now(),
	}, nil
}
