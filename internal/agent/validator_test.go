package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financegpt/internal/models"
	"financegpt/internal/store"
)

// mockQuoter serves canned quotes or errors, counting calls.
type mockQuoter struct {
	calls int
	quote *models.Quote
	err   error
	failN int // fail the first N calls, then serve quote
}

func (m *mockQuoter) Get(ctx context.Context, symbol string) (*models.Quote, error) {
	m.calls++
	if m.failN > 0 && m.calls <= m.failN {
		return nil, m.err
	}
	if m.err != nil && m.failN == 0 {
		return nil, m.err
	}
	q := *m.quote
	q.Symbol = symbol
	return &q, nil
}

type tradeCall struct {
	accountID string
	action    models.TradeAction
	symbol    string
	shares    int64
	price     decimal.Decimal
}

// mockStore is a recording store.Store stub for router and validator tests.
type mockStore struct {
	account   *models.Account
	positions []models.Position
	watchlist []string

	executed   []tradeCall
	execResult store.Result

	getUserCalls   int
	portfolioCalls int
	chat           []models.ChatMessage
}

var _ store.Store = (*mockStore)(nil)

func (m *mockStore) CreateAccount(accountID, email, password string) (*models.Account, error) {
	return m.account, nil
}

func (m *mockStore) Authenticate(email, password string) (*models.Account, error) {
	if m.account == nil {
		return nil, store.ErrNotFound
	}
	return m.account, nil
}

func (m *mockStore) GetUser(accountID string) (*models.Account, error) {
	m.getUserCalls++
	if m.account == nil {
		return nil, store.ErrNotFound
	}
	return m.account, nil
}

func (m *mockStore) Deposit(accountID string, amount decimal.Decimal) (store.Result, error) {
	m.account.Balance = m.account.Balance.Add(amount)
	return store.Result{Status: "success", Message: "deposited"}, nil
}

func (m *mockStore) GetPortfolio(accountID string) ([]models.Position, error) {
	m.portfolioCalls++
	return m.positions, nil
}

func (m *mockStore) GetWatchlist(accountID string) ([]string, error) {
	return m.watchlist, nil
}

func (m *mockStore) AddToWatchlist(accountID, symbol string) (store.Result, error) {
	m.watchlist = append(m.watchlist, symbol)
	return store.Result{Status: "success", Message: "added"}, nil
}

func (m *mockStore) RemoveFromWatchlist(accountID, symbol string) (store.Result, error) {
	return store.Result{Status: "success", Message: "removed"}, nil
}

func (m *mockStore) ExecuteTrade(accountID string, action models.TradeAction, symbol string, shares int64, price decimal.Decimal) (store.Result, error) {
	m.executed = append(m.executed, tradeCall{accountID, action, symbol, shares, price})
	if m.execResult.Status == "" {
		return store.Result{Status: "success", Message: "executed"}, nil
	}
	return m.execResult, nil
}

func (m *mockStore) SaveChatMessage(accountID, speaker, text string) error {
	m.chat = append(m.chat, models.ChatMessage{AccountID: accountID, Speaker: speaker, Text: text})
	return nil
}

func (m *mockStore) RecentChatHistory(accountID string, limit int) ([]models.ChatMessage, error) {
	return m.chat, nil
}

func (m *mockStore) Close() error { return nil }

func testAccount(balance string) *models.Account {
	return &models.Account{
		AccountID: "acct-1",
		Email:     "trader@example.com",
		Balance:   decimal.RequireFromString(balance),
	}
}

func quoteAt(price string) *models.Quote {
	return &models.Quote{
		Price:         decimal.RequireFromString(price),
		ChangePercent: decimal.RequireFromString("1.25"),
		Volume:        1000000,
		FetchedAt:     time.Now(),
	}
}

func TestParseTrade(t *testing.T) {
	intent, err := ParseTrade("buy 10 shares of AAPL")
	if err != nil {
		t.Fatalf("ParseTrade: %v", err)
	}
	if intent.Action != models.Buy || intent.Symbol != "AAPL" || intent.Shares != 10 {
		t.Fatalf("got %+v", intent)
	}

	intent, err = ParseTrade("please sell 5 TSLA now!")
	if err != nil {
		t.Fatalf("ParseTrade: %v", err)
	}
	if intent.Action != models.Sell || intent.Symbol != "TSLA" || intent.Shares != 5 {
		t.Fatalf("got %+v", intent)
	}
}

func TestParseTradeScansAfterActionOnly(t *testing.T) {
	// Tokens before the action keyword must not be mistaken for the share
	// count or the symbol.
	intent, err := ParseTrade("I have 2 questions but first buy 10 AAPL")
	if err != nil {
		t.Fatalf("ParseTrade: %v", err)
	}
	if intent.Shares != 10 {
		t.Fatalf("shares = %d, want 10", intent.Shares)
	}
	if intent.Symbol != "AAPL" {
		t.Fatalf("symbol = %q, want AAPL", intent.Symbol)
	}

	if _, err := ParseTrade("AAPL looks good, sell 5"); !errors.Is(err, ErrMissingSymbol) {
		t.Fatalf("symbol before the action keyword should not count, got %v", err)
	}
}

func TestParseTradeMissingSymbol(t *testing.T) {
	if _, err := ParseTrade("buy 10 shares of ZZZZ"); !errors.Is(err, ErrMissingSymbol) {
		t.Fatalf("want ErrMissingSymbol, got %v", err)
	}
}

func TestParseTradeMissingShares(t *testing.T) {
	if _, err := ParseTrade("buy some AAPL"); !errors.Is(err, ErrMissingShares) {
		t.Fatalf("want ErrMissingShares, got %v", err)
	}
}

func TestParseTradeNegativeShares(t *testing.T) {
	if _, err := ParseTrade("buy -5 AAPL"); !errors.Is(err, ErrInvalidShares) {
		t.Fatalf("want ErrInvalidShares, got %v", err)
	}
}

func TestValidateBuySuccess(t *testing.T) {
	quoter := &mockQuoter{quote: quoteAt("150.00")}
	v := NewTradeValidator(quoter, &mockStore{}, 3, time.Second)
	v.sleep = func(time.Duration) {}

	trade, err := v.Validate(context.Background(), testAccount("10000"), &models.TradeIntent{
		Action: models.Buy, Symbol: "AAPL", Shares: 10,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if trade.Action != models.Buy || trade.Symbol != "AAPL" || trade.Shares != 10 {
		t.Fatalf("got %+v", trade)
	}
	if !trade.Price.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("price = %s", trade.Price)
	}
	if !trade.TotalAmount.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("total = %s", trade.TotalAmount)
	}
}

func TestValidateInsufficientFunds(t *testing.T) {
	quoter := &mockQuoter{quote: quoteAt("150.00")}
	v := NewTradeValidator(quoter, &mockStore{}, 3, time.Second)
	v.sleep = func(time.Duration) {}

	_, err := v.Validate(context.Background(), testAccount("100"), &models.TradeIntent{
		Action: models.Buy, Symbol: "AAPL", Shares: 10,
	})
	var funds *InsufficientFundsError
	if !errors.As(err, &funds) {
		t.Fatalf("want InsufficientFundsError, got %v", err)
	}
	if !funds.Required.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("required = %s", funds.Required)
	}
	if !funds.Available.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("available = %s", funds.Available)
	}
}

func TestValidateSellWithoutHoldings(t *testing.T) {
	quoter := &mockQuoter{quote: quoteAt("200.00")}
	v := NewTradeValidator(quoter, &mockStore{}, 3, time.Second)
	v.sleep = func(time.Duration) {}

	_, err := v.Validate(context.Background(), testAccount("10000"), &models.TradeIntent{
		Action: models.Sell, Symbol: "TSLA", Shares: 5,
	})
	var shares *InsufficientSharesError
	if !errors.As(err, &shares) {
		t.Fatalf("want InsufficientSharesError, got %v", err)
	}
	if shares.Symbol != "TSLA" || shares.Required != 5 || shares.Available != 0 {
		t.Fatalf("got %+v", shares)
	}
}

func TestValidateQuoteRetryBackoff(t *testing.T) {
	quoter := &mockQuoter{err: errors.New("upstream down")}
	v := NewTradeValidator(quoter, &mockStore{}, 3, time.Second)

	var delays []time.Duration
	v.sleep = func(d time.Duration) { delays = append(delays, d) }

	_, err := v.Validate(context.Background(), testAccount("10000"), &models.TradeIntent{
		Action: models.Buy, Symbol: "AAPL", Shares: 1,
	})
	var unavailable *QuoteUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("want QuoteUnavailableError, got %v", err)
	}
	if unavailable.Symbol != "AAPL" {
		t.Fatalf("symbol = %s", unavailable.Symbol)
	}
	if quoter.calls != 3 {
		t.Fatalf("calls = %d, want 3", quoter.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v", delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestValidateRecoversAfterTransientFailure(t *testing.T) {
	quoter := &mockQuoter{quote: quoteAt("150.00"), err: errors.New("flaky"), failN: 2}
	v := NewTradeValidator(quoter, &mockStore{}, 3, time.Second)
	v.sleep = func(time.Duration) {}

	trade, err := v.Validate(context.Background(), testAccount("10000"), &models.TradeIntent{
		Action: models.Buy, Symbol: "AAPL", Shares: 1,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if quoter.calls != 3 {
		t.Fatalf("calls = %d, want 3", quoter.calls)
	}
	if !trade.Price.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("price = %s", trade.Price)
	}
}

func TestRevalidateAfterBalanceDrop(t *testing.T) {
	v := NewTradeValidator(&mockQuoter{quote: quoteAt("150.00")}, &mockStore{}, 1, 0)
	trade := &models.PendingTrade{
		Action:      models.Buy,
		Symbol:      "AAPL",
		Shares:      10,
		Price:       decimal.RequireFromString("150"),
		TotalAmount: decimal.RequireFromString("1500"),
	}

	if err := v.Revalidate(testAccount("10000"), trade); err != nil {
		t.Fatalf("Revalidate: %v", err)
	}

	var funds *InsufficientFundsError
	if err := v.Revalidate(testAccount("1000"), trade); !errors.As(err, &funds) {
		t.Fatalf("want InsufficientFundsError, got %v", err)
	}
}
