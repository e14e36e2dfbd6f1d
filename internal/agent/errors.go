package agent

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Trade validation and routing failures. Every one of these is recovered at
// the router boundary and rendered as a user-facing string; none are fatal.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMissingSymbol      = errors.New("missing or unsupported stock symbol")
	ErrMissingShares      = errors.New("missing share count")
	ErrInvalidShares      = errors.New("share count must be positive")
	ErrNoPendingOperation = errors.New("no pending operation to confirm")
)

// QuoteUnavailableError wraps a market-data failure for one symbol, after the
// retry policy has been exhausted.
type QuoteUnavailableError struct {
	Symbol string
	Err    error
}

func (e *QuoteUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("quote unavailable for %s", e.Symbol)
	}
	return fmt.Sprintf("quote unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *QuoteUnavailableError) Unwrap() error { return e.Err }

// InsufficientFundsError rejects a BUY the account balance cannot cover.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required $%s, available $%s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// InsufficientSharesError rejects a SELL exceeding the held position.
type InsufficientSharesError struct {
	Symbol    string
	Required  int64
	Available int64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: required %d, available %d",
		e.Symbol, e.Required, e.Available)
}
