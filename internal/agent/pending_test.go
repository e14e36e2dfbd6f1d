package agent

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"financegpt/internal/models"
)

func pendingTrade(symbol string, shares int64) *models.PendingTrade {
	return &models.PendingTrade{
		Action: models.Buy,
		Symbol: symbol,
		Shares: shares,
		Price:  decimal.RequireFromString("100"),
	}
}

func TestPendingConfirmEmpty(t *testing.T) {
	p := NewPendingStore()
	if _, err := p.Confirm(); !errors.Is(err, ErrNoPendingOperation) {
		t.Fatalf("want ErrNoPendingOperation, got %v", err)
	}
}

func TestPendingLastStagedWins(t *testing.T) {
	p := NewPendingStore()
	p.Stage(pendingTrade("AAPL", 10))
	p.Stage(pendingTrade("TSLA", 5))

	trade, err := p.Confirm()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if trade.Symbol != "TSLA" || trade.Shares != 5 {
		t.Fatalf("got %s x%d, want TSLA x5", trade.Symbol, trade.Shares)
	}
}

func TestPendingConfirmClearsSlot(t *testing.T) {
	p := NewPendingStore()
	p.Stage(pendingTrade("AAPL", 10))

	if _, err := p.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := p.Confirm(); !errors.Is(err, ErrNoPendingOperation) {
		t.Fatalf("second Confirm should fail, got %v", err)
	}
}

func TestPendingClear(t *testing.T) {
	p := NewPendingStore()
	if p.Clear() {
		t.Fatal("Clear on empty slot reported a trade")
	}
	p.Stage(pendingTrade("AAPL", 1))
	if !p.Clear() {
		t.Fatal("Clear dropped nothing")
	}
	if p.Peek() != nil {
		t.Fatal("slot not empty after Clear")
	}
}
