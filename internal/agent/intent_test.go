package agent

import "testing"

func TestClassifyTable(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		text    string
		pending bool
		want    IntentKind
	}{
		{"buy 10 AAPL", false, IntentTrade},
		{"Sell 5 shares of TSLA", false, IntentTrade},
		{"purchase 3 NVDA", false, IntentTrade},
		{"hello", false, IntentGreeting},
		{"Good morning", false, IntentGreeting},
		{"market summary", false, IntentMarketSummary},
		{"how is the market?", false, IntentMarketSummary},
		{"balance", false, IntentBalance},
		{"what's my balance", false, IntentBalance},
		{"portfolio", false, IntentPortfolio},
		{"my holdings", false, IntentPortfolio},
		{"watchlist", false, IntentWatchlistShow},
		{"add NVDA to watchlist", false, IntentWatchlistAdd},
		{"watch AAPL", false, IntentWatchlistAdd},
		{"remove NVDA from watchlist", false, IntentWatchlistRemove},
		{"unwatch AAPL", false, IntentWatchlistRemove},
		{"quote AAPL", false, IntentQuote},
		{"price of TSLA", false, IntentQuote},
		{"AAPL", false, IntentQuote},
		{"analyze MSFT", false, IntentAnalyze},
		{"help", false, IntentHelp},
		{"symbols", false, IntentSymbols},
		{"yes", true, IntentConfirm},
		{"confirm", true, IntentConfirm},
		{"no", true, IntentCancel},
		{"cancel", true, IntentCancel},
		// Without a pending trade these fall through to the model.
		{"yes", false, IntentFreeform},
		{"no", false, IntentFreeform},
		{"what do you think about tech stocks?", false, IntentFreeform},
	}
	for _, tc := range cases {
		got := c.Classify(tc.text, tc.pending)
		if got.Kind != tc.want {
			t.Errorf("Classify(%q, pending=%v) = %v, want %v", tc.text, tc.pending, got.Kind, tc.want)
		}
	}
}

func TestClassifyTradeWordDominates(t *testing.T) {
	c := NewClassifier()
	// "yes" alongside a trade word must stage a new trade, not confirm the
	// old one.
	got := c.Classify("yes buy 10 AAPL", true)
	if got.Kind != IntentTrade {
		t.Fatalf("got %v, want IntentTrade", got.Kind)
	}
}

func TestClassifyExtractsSymbols(t *testing.T) {
	c := NewClassifier()
	if got := c.Classify("add nvda to watchlist", false); got.Symbol != "NVDA" {
		t.Fatalf("add symbol = %q", got.Symbol)
	}
	if got := c.Classify("quote tsla", false); got.Symbol != "TSLA" {
		t.Fatalf("quote symbol = %q", got.Symbol)
	}
	if got := c.Classify("remove aapl from my watchlist", false); got.Symbol != "AAPL" {
		t.Fatalf("remove symbol = %q", got.Symbol)
	}
}

func TestClassifierRulesOrdered(t *testing.T) {
	rules := NewClassifier().Rules()
	if len(rules) == 0 {
		t.Fatal("empty rule table")
	}
	if rules[0].Name != "trade" {
		t.Fatalf("first rule = %q, want trade", rules[0].Name)
	}
}
