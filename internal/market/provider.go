package market

import (
	"context"
	"errors"

	"financegpt/internal/models"
)

// ErrNoQuote is returned when a provider cannot produce a usable price
// for a symbol.
var ErrNoQuote = errors.New("market: no quote available")

// Provider is the market-data collaborator. Implementations exist for
// Yahoo Finance, Alpaca and an offline simulator; tests supply their own.
type Provider interface {
	// GetQuote fetches a fresh quote for one symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Index symbols used by the market summary.
var Indices = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones",
	"^IXIC": "NASDAQ",
}
