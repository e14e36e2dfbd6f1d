package agent

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financegpt/internal/models"
	"financegpt/internal/store"
)

// Quoter supplies price snapshots. Satisfied by *market.QuoteCache.
type Quoter interface {
	Get(ctx context.Context, symbol string) (*models.Quote, error)
}

// TradeValidator turns a raw trade request into a fully-priced PendingTrade,
// or rejects it. Every trade passes through here exactly once before it can
// be staged, whether it came from the command parser or from a model-emitted
// operation payload.
type TradeValidator struct {
	quotes Quoter
	store  store.Store

	retries int
	backoff time.Duration

	// Injectable for tests.
	sleep func(time.Duration)
}

// NewTradeValidator builds a validator with the given quote retry policy.
// Backoff doubles after each failed attempt.
func NewTradeValidator(quotes Quoter, st store.Store, retries int, backoff time.Duration) *TradeValidator {
	if retries < 1 {
		retries = 1
	}
	return &TradeValidator{
		quotes:  quotes,
		store:   st,
		retries: retries,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

// ParseTrade extracts action, share count and symbol from free text like
// "buy 10 shares of AAPL". Only tokens after the action keyword count: the
// first numeric one is the share count and the first allow-listed ticker is
// the symbol; everything else is ignored.
func ParseTrade(text string) (*models.TradeIntent, error) {
	intent := &models.TradeIntent{}

	for _, tok := range strings.Fields(text) {
		word := strings.Trim(tok, ".,!?;:()$\"'")
		lower := strings.ToLower(word)

		if intent.Action == "" {
			switch lower {
			case "buy", "purchase":
				intent.Action = models.Buy
			case "sell":
				intent.Action = models.Sell
			}
			continue
		}
		if intent.Shares == 0 {
			if n, err := strconv.ParseInt(strings.ReplaceAll(word, ",", ""), 10, 64); err == nil {
				if n <= 0 {
					return nil, ErrInvalidShares
				}
				intent.Shares = n
				continue
			}
		}
		if intent.Symbol == "" && IsSupportedSymbol(word) {
			intent.Symbol = strings.ToUpper(word)
		}
	}

	if intent.Symbol == "" {
		return nil, ErrMissingSymbol
	}
	if intent.Shares == 0 {
		return nil, ErrMissingShares
	}
	return intent, nil
}

// Validate prices the intent and checks it against the account: a BUY must
// fit the cash balance, a SELL must not exceed the aggregated holding. On
// success the returned PendingTrade carries the locked-in price.
func (v *TradeValidator) Validate(ctx context.Context, acct *models.Account, intent *models.TradeIntent) (*models.PendingTrade, error) {
	if acct == nil {
		return nil, ErrNotAuthenticated
	}
	if !IsSupportedSymbol(intent.Symbol) {
		return nil, ErrMissingSymbol
	}
	if intent.Shares <= 0 {
		return nil, ErrInvalidShares
	}

	quote, err := v.fetchQuote(ctx, intent.Symbol)
	if err != nil {
		return nil, err
	}

	total := quote.Price.Mul(decimal.NewFromInt(intent.Shares))

	switch intent.Action {
	case models.Buy:
		if total.GreaterThan(acct.Balance) {
			return nil, &InsufficientFundsError{Required: total, Available: acct.Balance}
		}
	case models.Sell:
		held, err := v.heldShares(acct.AccountID, intent.Symbol)
		if err != nil {
			return nil, err
		}
		if intent.Shares > held {
			return nil, &InsufficientSharesError{
				Symbol:    intent.Symbol,
				Required:  intent.Shares,
				Available: held,
			}
		}
	}

	return &models.PendingTrade{
		Action:      intent.Action,
		Symbol:      intent.Symbol,
		Shares:      intent.Shares,
		Price:       quote.Price,
		TotalAmount: total,
		CreatedBy:   acct.AccountID,
		CreatedAt:   time.Now(),
	}, nil
}

// Revalidate re-checks an already staged trade at confirmation time against
// the account's current balance and holdings. The staged price is kept.
func (v *TradeValidator) Revalidate(acct *models.Account, trade *models.PendingTrade) error {
	if acct == nil {
		return ErrNotAuthenticated
	}
	switch trade.Action {
	case models.Buy:
		if trade.TotalAmount.GreaterThan(acct.Balance) {
			return &InsufficientFundsError{Required: trade.TotalAmount, Available: acct.Balance}
		}
	case models.Sell:
		held, err := v.heldShares(acct.AccountID, trade.Symbol)
		if err != nil {
			return err
		}
		if trade.Shares > held {
			return &InsufficientSharesError{
				Symbol:    trade.Symbol,
				Required:  trade.Shares,
				Available: held,
			}
		}
	}
	return nil
}

// fetchQuote retries transient quote failures with doubling backoff before
// giving up with a QuoteUnavailableError.
func (v *TradeValidator) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var lastErr error
	delay := v.backoff
	for attempt := 0; attempt < v.retries; attempt++ {
		quote, err := v.quotes.Get(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		v.sleep(delay)
		delay *= 2
	}
	return nil, &QuoteUnavailableError{Symbol: symbol, Err: lastErr}
}

func (v *TradeValidator) heldShares(accountID, symbol string) (int64, error) {
	positions, err := v.store.GetPortfolio(accountID)
	if err != nil {
		return 0, err
	}
	var held int64
	for _, p := range positions {
		if strings.EqualFold(p.Symbol, symbol) {
			held += p.Shares
		}
	}
	return held, nil
}
