// Package alpaca adapts the Alpaca market-data API to market.Provider.
// Trading stays local; only quotes come from Alpaca.
package alpaca

import (
	"context"
	"fmt"

	"financegpt/internal/market"
	"financegpt/internal/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// Provider implements market.Provider for Alpaca.
type Provider struct {
	mdClient *marketdata.Client
}

var _ market.Provider = (*Provider)(nil)

// NewProvider returns a new Alpaca provider. The client reads
// APCA_API_KEY_ID / APCA_API_SECRET_KEY from the environment.
func NewProvider() *Provider {
	return &Provider{
		mdClient: marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

func (p *Provider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	snap, err := p.mdClient.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.LatestTrade == nil {
		return nil, fmt.Errorf("%w: %s", market.ErrNoQuote, symbol)
	}

	price := decimal.NewFromFloat(snap.LatestTrade.Price)
	if price.IsZero() {
		return nil, fmt.Errorf("%w: %s", market.ErrNoQuote, symbol)
	}

	change := decimal.Zero
	var volume int64
	if snap.DailyBar != nil {
		volume = int64(snap.DailyBar.Volume)
	}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		prev := decimal.NewFromFloat(snap.PrevDailyBar.Close)
		change = price.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		ChangePercent: change,
		Volume:        volume,
		FetchedAt:     snap.LatestTrade.Timestamp,
	}, nil
}
