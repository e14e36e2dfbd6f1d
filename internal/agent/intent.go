package agent

import (
	"regexp"
	"strings"
)

// IntentKind identifies what the user is asking for.
type IntentKind int

const (
	IntentFreeform IntentKind = iota
	IntentTrade
	IntentConfirm
	IntentCancel
	IntentGreeting
	IntentMarketSummary
	IntentBalance
	IntentPortfolio
	IntentWatchlistShow
	IntentWatchlistAdd
	IntentWatchlistRemove
	IntentQuote
	IntentAnalyze
	IntentHelp
	IntentSymbols
)

// Intent is the classified request. Symbol carries the extracted ticker for
// quote, analyze and watchlist intents; Reply carries a canned response for
// intents that need no further processing.
type Intent struct {
	Kind   IntentKind
	Symbol string
	Reply  string
}

// classifyInput is what a rule sees: the lowercased trimmed text, its
// whitespace-split fields, and whether a trade is waiting for confirmation
// (the confirm and cancel rules only fire in that state).
type classifyInput struct {
	norm       string
	fields     []string
	hasPending bool
}

// Rule is one entry of the classifier table. Rules are tried in order and
// the first match wins, so earlier rules take precedence over later ones.
type Rule struct {
	Name  string
	match func(in classifyInput) (Intent, bool)
}

// Classifier routes free-text input to an intent via an ordered rule table.
type Classifier struct {
	rules []Rule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Rules exposes the table for inspection, highest precedence first.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify runs text through the table. hasPending gates the confirm and
// cancel rules. Unmatched input falls through to IntentFreeform.
func (c *Classifier) Classify(text string, hasPending bool) Intent {
	in := classifyInput{
		norm:       strings.ToLower(strings.TrimSpace(text)),
		hasPending: hasPending,
	}
	in.fields = strings.Fields(in.norm)
	for _, r := range c.rules {
		if intent, ok := r.match(in); ok {
			return intent
		}
	}
	return Intent{Kind: IntentFreeform}
}

var (
	tradeWords = map[string]bool{
		"buy": true, "sell": true, "purchase": true,
	}
	greetingWords = map[string]bool{
		"hi": true, "hello": true, "hey": true, "greetings": true,
		"good morning": true, "good afternoon": true, "good evening": true,
	}
	confirmWords = map[string]bool{
		"yes": true, "y": true, "confirm": true, "confirmed": true,
		"ok": true, "okay": true, "sure": true, "proceed": true, "do it": true,
	}
	cancelWords = map[string]bool{
		"no": true, "n": true, "cancel": true, "stop": true, "abort": true,
		"never mind": true, "nevermind": true,
	}
	balancePhrases = map[string]bool{
		"balance": true, "my balance": true, "check balance": true,
		"account balance": true, "check my balance": true,
		"what is my balance": true, "what's my balance": true,
	}
	portfolioPhrases = map[string]bool{
		"portfolio": true, "my portfolio": true, "show portfolio": true,
		"holdings": true, "my holdings": true, "positions": true,
		"my positions": true,
	}
	watchlistPhrases = map[string]bool{
		"watchlist": true, "my watchlist": true, "show watchlist": true,
		"show my watchlist": true,
	}
	helpPhrases = map[string]bool{
		"help": true, "commands": true, "what can you do": true,
		"what can you do?": true,
	}
	symbolPhrases = map[string]bool{
		"symbols": true, "supported symbols": true, "list symbols": true,
		"show symbols": true, "tickers": true,
	}

	watchAddRe    = regexp.MustCompile(`^(?:add\s+(\S+)\s+to\s+(?:my\s+)?watchlist|watch\s+(\S+))$`)
	watchRemoveRe = regexp.MustCompile(`^(?:remove\s+(\S+)\s+from\s+(?:my\s+)?watchlist|unwatch\s+(\S+))$`)
	quoteRe       = regexp.MustCompile(`^(?:quote|price|price\s+of|price\s+for)\s+(\S+)\??$`)
	analyzeRe     = regexp.MustCompile(`^(?:analyze|analysis|analyse)\s+(\S+)$`)
)

const greetingReply = "Hello! I'm FinanceGPT, your personal finance assistant. " +
	"I can check stock prices, manage your watchlist, and place trades for you. How can I help?"

// defaultRules is the classifier table. Order matters: trade words dominate
// everything so "buy 10 AAPL yes please" stages a trade rather than
// confirming one, and confirm/cancel outrank the freeform fallback only
// while a trade is actually pending.
var defaultRules = []Rule{
	{Name: "trade", match: func(in classifyInput) (Intent, bool) {
		for _, f := range in.fields {
			if tradeWords[f] {
				return Intent{Kind: IntentTrade}, true
			}
		}
		return Intent{}, false
	}},
	{Name: "greeting", match: func(in classifyInput) (Intent, bool) {
		if greetingWords[in.norm] {
			return Intent{Kind: IntentGreeting, Reply: greetingReply}, true
		}
		return Intent{}, false
	}},
	{Name: "market", match: func(in classifyInput) (Intent, bool) {
		switch in.norm {
		case "market", "market summary", "market overview",
			"how is the market", "how is the market?",
			"how's the market", "how's the market?",
			"how is the market doing", "how is the market doing?":
			return Intent{Kind: IntentMarketSummary}, true
		}
		return Intent{}, false
	}},
	{Name: "balance", match: func(in classifyInput) (Intent, bool) {
		if balancePhrases[in.norm] {
			return Intent{Kind: IntentBalance}, true
		}
		return Intent{}, false
	}},
	{Name: "portfolio", match: func(in classifyInput) (Intent, bool) {
		if portfolioPhrases[in.norm] {
			return Intent{Kind: IntentPortfolio}, true
		}
		return Intent{}, false
	}},
	{Name: "watchlist-show", match: func(in classifyInput) (Intent, bool) {
		if watchlistPhrases[in.norm] {
			return Intent{Kind: IntentWatchlistShow}, true
		}
		return Intent{}, false
	}},
	{Name: "watchlist-add", match: func(in classifyInput) (Intent, bool) {
		if m := watchAddRe.FindStringSubmatch(in.norm); m != nil {
			sym := m[1]
			if sym == "" {
				sym = m[2]
			}
			return Intent{Kind: IntentWatchlistAdd, Symbol: strings.ToUpper(sym)}, true
		}
		return Intent{}, false
	}},
	{Name: "watchlist-remove", match: func(in classifyInput) (Intent, bool) {
		if m := watchRemoveRe.FindStringSubmatch(in.norm); m != nil {
			sym := m[1]
			if sym == "" {
				sym = m[2]
			}
			return Intent{Kind: IntentWatchlistRemove, Symbol: strings.ToUpper(sym)}, true
		}
		return Intent{}, false
	}},
	{Name: "help", match: func(in classifyInput) (Intent, bool) {
		if helpPhrases[in.norm] {
			return Intent{Kind: IntentHelp}, true
		}
		return Intent{}, false
	}},
	{Name: "symbols", match: func(in classifyInput) (Intent, bool) {
		if symbolPhrases[in.norm] {
			return Intent{Kind: IntentSymbols}, true
		}
		return Intent{}, false
	}},
	{Name: "analyze", match: func(in classifyInput) (Intent, bool) {
		if m := analyzeRe.FindStringSubmatch(in.norm); m != nil {
			return Intent{Kind: IntentAnalyze, Symbol: strings.ToUpper(m[1])}, true
		}
		return Intent{}, false
	}},
	{Name: "quote", match: func(in classifyInput) (Intent, bool) {
		if m := quoteRe.FindStringSubmatch(in.norm); m != nil {
			return Intent{Kind: IntentQuote, Symbol: strings.ToUpper(strings.TrimSuffix(m[1], "?"))}, true
		}
		// A bare supported ticker is a quote request too.
		if len(in.fields) == 1 && IsSupportedSymbol(in.fields[0]) {
			return Intent{Kind: IntentQuote, Symbol: strings.ToUpper(in.fields[0])}, true
		}
		return Intent{}, false
	}},
	{Name: "confirm", match: func(in classifyInput) (Intent, bool) {
		if in.hasPending && confirmWords[in.norm] {
			return Intent{Kind: IntentConfirm}, true
		}
		return Intent{}, false
	}},
	{Name: "cancel", match: func(in classifyInput) (Intent, bool) {
		if in.hasPending && cancelWords[in.norm] {
			return Intent{Kind: IntentCancel}, true
		}
		return Intent{}, false
	}},
}
