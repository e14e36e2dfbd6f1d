package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the direction of a trade.
type TradeAction string

const (
	Buy  TradeAction = "BUY"
	Sell TradeAction = "SELL"
)

// Quote is a point-in-time price snapshot for a symbol.
// Quotes are immutable once fetched; a fresher fetch supersedes, never mutates.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Volume        int64           `json:"volume"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// Position is an aggregated holding in one symbol.
// CurrentPrice is filled by the presentation layer from live quotes; the
// ledger only persists shares and average price.
type Position struct {
	Symbol       string          `json:"symbol"`
	Shares       int64           `json:"shares"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Account is the persisted account record.
type Account struct {
	AccountID string          `json:"account_id"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
}

// TradeIntent is a parsed but unvalidated trade request.
type TradeIntent struct {
	Action TradeAction `json:"action"`
	Symbol string      `json:"symbol"`
	Shares int64       `json:"shares"`
}

// PendingTrade is a validated trade awaiting explicit user confirmation.
// The price is locked at staging time.
type PendingTrade struct {
	Action      TradeAction     `json:"action"`
	Symbol      string          `json:"symbol"`
	Shares      int64           `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ChatMessage is one persisted line of conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Speaker   string    `json:"speaker"` // USER or ASSISTANT
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
