// Package yahoo fetches quotes from the Yahoo Finance v8 chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"financegpt/internal/market"
	"financegpt/internal/models"

	"github.com/shopspring/decimal"
)

const baseURL = "https://query2.finance.yahoo.com/v8/finance/chart/"

// Provider implements market.Provider against Yahoo Finance.
// It also resolves the ^GSPC/^DJI/^IXIC index symbols, which the
// market summary relies on.
type Provider struct {
	cli *http.Client
}

var _ market.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		cli: &http.Client{Timeout: 8 * time.Second},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
				RegularMarketTime   int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

func (p *Provider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	u := baseURL + url.PathEscape(symbol) + "?interval=1m&range=1d"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "financegpt/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo http %d for %s", resp.StatusCode, symbol)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoQuote, symbol)
	}

	r := raw.Chart.Result[0]
	price := r.Meta.RegularMarketPrice
	fetched := time.Unix(r.Meta.RegularMarketTime, 0)

	// Fall back to the last non-zero minute close when meta is missing.
	if price <= 0 && len(r.Timestamp) > 0 && len(r.Indicators.Quote) > 0 &&
		len(r.Indicators.Quote[0].Close) == len(r.Timestamp) {
		for i := len(r.Timestamp) - 1; i >= 0; i-- {
			if c := r.Indicators.Quote[0].Close[i]; c > 0 {
				price = c
				fetched = time.Unix(r.Timestamp[i], 0)
				break
			}
		}
	}

	if price <= 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoQuote, symbol)
	}
	if fetched.IsZero() || fetched.Unix() == 0 {
		fetched = time.Now()
	}

	change := decimal.Zero
	if prev := r.Meta.ChartPreviousClose; prev > 0 {
		change = decimal.NewFromFloat(price).
			Sub(decimal.NewFromFloat(prev)).
			Div(decimal.NewFromFloat(prev)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(price),
		ChangePercent: change,
		Volume:        r.Meta.RegularMarketVolume,
		FetchedAt:     fetched,
	}, nil
}
