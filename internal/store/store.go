// Package store is the persistence collaborator: accounts, positions,
// watchlists, transactions and the chat log.
package store

import (
	"errors"

	"financegpt/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: already exists")
)

// Result is the status/message pair account-mutating operations report back
// to the caller for rendering.
type Result struct {
	Status  string // "success" or "error"
	Message string
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Status == "success" }

// Store is the persistence interface the agent consumes. Balances and
// positions are mutated only by ExecuteTrade and Deposit.
type Store interface {
	CreateAccount(accountID, email, password string) (*models.Account, error)
	Authenticate(email, password string) (*models.Account, error)
	GetUser(accountID string) (*models.Account, error)
	Deposit(accountID string, amount decimal.Decimal) (Result, error)

	GetPortfolio(accountID string) ([]models.Position, error)

	GetWatchlist(accountID string) ([]string, error)
	AddToWatchlist(accountID, symbol string) (Result, error)
	RemoveFromWatchlist(accountID, symbol string) (Result, error)

	ExecuteTrade(accountID string, action models.TradeAction, symbol string, shares int64, price decimal.Decimal) (Result, error)

	SaveChatMessage(accountID, speaker, text string) error
	RecentChatHistory(accountID string, limit int) ([]models.ChatMessage, error)

	Close() error
}
