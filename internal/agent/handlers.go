package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"financegpt/internal/ai"
	"financegpt/internal/market"
	"financegpt/internal/models"
)

const (
	loginForBalance = "Please log in to check your balance."
	loginForTrades  = "Please log in to place trades."
	loginGeneric    = "Please log in first. Use: login <email> <password>"
)

func (r *Router) handleTrade(ctx context.Context, text string) string {
	acct := r.session.Account()
	if acct == nil {
		return loginForTrades
	}

	intent, err := ParseTrade(text)
	if err != nil {
		return renderTradeError(err)
	}

	trade, err := r.validator.Validate(ctx, acct, intent)
	if err != nil {
		return renderTradeError(err)
	}

	// Last proposal wins: staging replaces anything already waiting.
	r.session.Pending.Stage(trade)
	log.Printf("trade staged: %s %d %s at %s for %s",
		trade.Action, trade.Shares, trade.Symbol, trade.Price.StringFixed(2), acct.AccountID)
	return formatTradeProposal(trade, r.cachedQuote(ctx, trade.Symbol))
}

// cachedQuote grabs the quote just used by validation for display context.
// It comes straight from the cache, so no fresh upstream call is made.
func (r *Router) cachedQuote(ctx context.Context, symbol string) *models.Quote {
	q, err := r.quotes.Get(ctx, symbol)
	if err != nil {
		return nil
	}
	return q
}

func (r *Router) handleConfirm(ctx context.Context) string {
	acct := r.session.Account()
	if acct == nil {
		return loginForTrades
	}

	trade, err := r.session.Pending.Confirm()
	if err != nil {
		return "There's no pending trade to confirm."
	}

	// Conditions may have changed since staging; re-check against the
	// current balance and holdings, but keep the staged price.
	fresh, err := r.store.GetUser(acct.AccountID)
	if err != nil {
		log.Printf("confirm: load account %s: %v", acct.AccountID, err)
		return "⚠️ Something went wrong executing the trade. It has been cancelled."
	}
	if err := r.validator.Revalidate(fresh, trade); err != nil {
		return renderTradeError(err)
	}

	result, err := r.store.ExecuteTrade(acct.AccountID, trade.Action, trade.Symbol, trade.Shares, trade.Price)
	if err != nil {
		log.Printf("confirm: execute trade for %s: %v", acct.AccountID, err)
		return "⚠️ Something went wrong executing the trade. It has been cancelled."
	}
	if !result.OK() {
		return "❌ " + result.Message
	}

	after, err := r.store.GetUser(acct.AccountID)
	if err != nil {
		log.Printf("confirm: reload account %s: %v", acct.AccountID, err)
		after = fresh
	}
	r.session.UpdateAccount(after)
	log.Printf("trade executed: %s %d %s at %s for %s",
		trade.Action, trade.Shares, trade.Symbol, trade.Price.StringFixed(2), acct.AccountID)
	return formatTradeExecuted(trade, after.Balance)
}

func (r *Router) handleCancel() string {
	if r.session.Pending.Clear() {
		return "❌ Trade cancelled. Nothing was executed."
	}
	return "There's no pending trade to cancel."
}

func (r *Router) handleBalance() string {
	acct := r.session.Account()
	if acct == nil {
		return loginForBalance
	}
	fresh, err := r.store.GetUser(acct.AccountID)
	if err != nil {
		log.Printf("balance: load account %s: %v", acct.AccountID, err)
		return "⚠️ Couldn't read your account right now. Please try again."
	}
	r.session.UpdateAccount(fresh)
	return formatBalance(fresh)
}

func (r *Router) handlePortfolio(ctx context.Context) string {
	acct := r.session.Account()
	if acct == nil {
		return loginGeneric
	}
	fresh, err := r.store.GetUser(acct.AccountID)
	if err != nil {
		log.Printf("portfolio: load account %s: %v", acct.AccountID, err)
		return "⚠️ Couldn't read your account right now. Please try again."
	}
	positions, err := r.store.GetPortfolio(acct.AccountID)
	if err != nil {
		log.Printf("portfolio: load positions %s: %v", acct.AccountID, err)
		return "⚠️ Couldn't read your portfolio right now. Please try again."
	}
	// Live valuation is best effort: a failed quote falls back to cost basis.
	for i := range positions {
		if q, err := r.quotes.Get(ctx, positions[i].Symbol); err == nil {
			positions[i].CurrentPrice = q.Price
		}
	}
	return formatPortfolio(fresh, positions)
}

func (r *Router) handleWatchlistShow(ctx context.Context) string {
	acct := r.session.Account()
	if acct == nil {
		return loginGeneric
	}
	symbols, err := r.store.GetWatchlist(acct.AccountID)
	if err != nil {
		log.Printf("watchlist: load %s: %v", acct.AccountID, err)
		return "⚠️ Couldn't read your watchlist right now. Please try again."
	}
	quotes := make(map[string]*models.Quote, len(symbols))
	for _, sym := range symbols {
		if q, err := r.quotes.Get(ctx, sym); err == nil {
			quotes[sym] = q
		}
	}
	return formatWatchlist(symbols, quotes)
}

func (r *Router) handleWatchlistAdd(ctx context.Context, symbol string) string {
	acct := r.session.Account()
	if acct == nil {
		return loginGeneric
	}
	if !IsSupportedSymbol(symbol) {
		return fmt.Sprintf("❌ %s is not a supported symbol. Try 'symbols' to see the full list.", symbol)
	}
	// Prove the symbol quotes before watching it, and echo the price.
	quote, err := r.validator.fetchQuote(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("⚠️ Couldn't fetch a quote for %s right now. Please try again shortly.", symbol)
	}
	result, err := r.store.AddToWatchlist(acct.AccountID, symbol)
	if err != nil {
		log.Printf("watchlist: add %s for %s: %v", symbol, acct.AccountID, err)
		return "⚠️ Couldn't update your watchlist right now. Please try again."
	}
	if !result.OK() {
		return "❌ " + result.Message
	}
	return fmt.Sprintf("✅ %s added to your watchlist. Currently %s (%s %s).",
		strings.ToUpper(symbol), formatMoney(quote.Price),
		changeEmoji(quote.ChangePercent), formatChange(quote.ChangePercent))
}

func (r *Router) handleWatchlistRemove(symbol string) string {
	acct := r.session.Account()
	if acct == nil {
		return loginGeneric
	}
	result, err := r.store.RemoveFromWatchlist(acct.AccountID, symbol)
	if err != nil {
		log.Printf("watchlist: remove %s for %s: %v", symbol, acct.AccountID, err)
		return "⚠️ Couldn't update your watchlist right now. Please try again."
	}
	if !result.OK() {
		return "❌ " + result.Message
	}
	return fmt.Sprintf("✅ %s removed from your watchlist.", strings.ToUpper(symbol))
}

func (r *Router) handleQuote(ctx context.Context, symbol string) string {
	if !IsSupportedSymbol(symbol) {
		return fmt.Sprintf("❌ %s is not a supported symbol. Try 'symbols' to see the full list.", symbol)
	}
	quote, err := r.validator.fetchQuote(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("⚠️ Couldn't fetch a quote for %s right now. Please try again shortly.", symbol)
	}
	return formatQuote(quote)
}

func (r *Router) handleAnalyze(ctx context.Context, symbol string) string {
	if !IsSupportedSymbol(symbol) {
		return fmt.Sprintf("❌ %s is not a supported symbol. Try 'symbols' to see the full list.", symbol)
	}
	quote, err := r.validator.fetchQuote(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("⚠️ Couldn't fetch a quote for %s right now. Please try again shortly.", symbol)
	}
	return formatAnalysis(quote)
}

func (r *Router) handleMarketSummary(ctx context.Context) string {
	summary := formatMarketSummary(r.now(), r.indexQuotes(ctx))
	if footer := r.portfolioFooter(ctx); footer != "" {
		summary += "\n" + footer
	}
	return summary
}

// portfolioFooter is the one-line holdings valuation appended to the market
// summary for logged-in users. Empty when not logged in or nothing is held.
func (r *Router) portfolioFooter(ctx context.Context) string {
	acct := r.session.Account()
	if acct == nil {
		return ""
	}
	positions, err := r.store.GetPortfolio(acct.AccountID)
	if err != nil || len(positions) == 0 {
		return ""
	}
	total := decimal.Zero
	cost := decimal.Zero
	for _, p := range positions {
		shares := decimal.NewFromInt(p.Shares)
		price := p.AveragePrice
		if q, err := r.quotes.Get(ctx, p.Symbol); err == nil {
			price = q.Price
		}
		total = total.Add(price.Mul(shares))
		cost = cost.Add(p.AveragePrice.Mul(shares))
	}
	if !cost.IsPositive() {
		return ""
	}
	pl := total.Sub(cost)
	pct := pl.Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
	return fmt.Sprintf("📋 Your holdings: %s (%s %s)",
		formatMoney(total), changeEmoji(pl), formatChange(pct))
}

// indexQuotes fetches the major index snapshots, best effort.
func (r *Router) indexQuotes(ctx context.Context) map[string]*models.Quote {
	quotes := make(map[string]*models.Quote, len(market.Indices))
	for sym := range market.Indices {
		q, err := r.quotes.Get(ctx, sym)
		if err != nil {
			log.Printf("market summary: quote %s: %v", sym, err)
			continue
		}
		quotes[sym] = q
	}
	return quotes
}

const modelUnavailable = "⚠️ I'm having trouble thinking right now. Please try again in a moment."

func (r *Router) handleFreeform(ctx context.Context, text string) string {
	if r.ai == nil {
		return "I can help with quotes, trades, your portfolio and watchlist. Try 'help' to see what I understand."
	}

	reply, err := r.ai.Ask(ctx, r.buildPromptContext(ctx, text))
	if err != nil {
		log.Printf("model query failed: %v", err)
		return modelUnavailable
	}

	op, ok := ai.ParseOperation(reply)
	if !ok {
		return reply
	}
	if op.IsTrade() {
		// Model-proposed trades get no shortcut: the payload goes through
		// the same validation and confirmation gate as a typed command.
		return r.stageModelTrade(ctx, op)
	}
	if op.NaturalResponse != "" {
		return op.NaturalResponse
	}
	return reply
}

func (r *Router) stageModelTrade(ctx context.Context, op *ai.Operation) string {
	acct := r.session.Account()
	if acct == nil {
		return loginForTrades
	}

	shares, err := op.Data.Shares.Int64()
	if err != nil || shares == 0 {
		return renderTradeError(ErrMissingShares)
	}
	intent := &models.TradeIntent{
		Action: models.TradeAction(strings.ToUpper(op.Operation)),
		Symbol: strings.ToUpper(op.Data.Symbol),
		Shares: shares,
	}

	trade, err := r.validator.Validate(ctx, acct, intent)
	if err != nil {
		return renderTradeError(err)
	}

	r.session.Pending.Stage(trade)
	log.Printf("trade staged (model): %s %d %s at %s for %s",
		trade.Action, trade.Shares, trade.Symbol, trade.Price.StringFixed(2), acct.AccountID)

	proposal := formatTradeProposal(trade, r.cachedQuote(ctx, trade.Symbol))
	if op.NaturalResponse != "" {
		return op.NaturalResponse + "\n\n" + proposal
	}
	return proposal
}

// buildPromptContext assembles the model's view of the world: account and
// holdings as JSON, index snapshots as JSON, and the retained history window.
func (r *Router) buildPromptContext(ctx context.Context, query string) ai.PromptContext {
	pc := ai.PromptContext{
		Query:       query,
		CurrentTime: r.now().Format("2006-01-02 15:04:05 MST"),
		UserData:    "{}",
		MarketData:  "{}",
	}

	if acct := r.session.Account(); acct != nil {
		positions, err := r.store.GetPortfolio(acct.AccountID)
		if err != nil {
			log.Printf("prompt context: load positions %s: %v", acct.AccountID, err)
		}
		doc := struct {
			Account   *models.Account   `json:"account"`
			Positions []models.Position `json:"positions"`
		}{acct, positions}
		if b, err := json.Marshal(doc); err == nil {
			pc.UserData = string(b)
		}
	}

	if b, err := json.Marshal(r.indexQuotes(ctx)); err == nil {
		pc.MarketData = string(b)
	}

	var sb strings.Builder
	for _, pair := range r.session.History() {
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s\n", pair.user, pair.assistant)
	}
	pc.ChatHistory = sb.String()
	return pc
}

// renderTradeError turns a validation failure into the user-facing reply.
func renderTradeError(err error) string {
	var funds *InsufficientFundsError
	var shares *InsufficientSharesError
	var quote *QuoteUnavailableError
	switch {
	case errors.Is(err, ErrMissingSymbol):
		return "❌ I couldn't find a supported stock symbol in that request. Try 'symbols' to see what I support."
	case errors.Is(err, ErrMissingShares):
		return "❌ How many shares? For example: 'buy 10 AAPL'."
	case errors.Is(err, ErrInvalidShares):
		return "❌ The share count must be a positive whole number."
	case errors.Is(err, ErrNotAuthenticated):
		return loginForTrades
	case errors.As(err, &funds):
		return fmt.Sprintf("❌ Insufficient funds: this trade needs %s but your balance is %s.",
			formatMoney(funds.Required), formatMoney(funds.Available))
	case errors.As(err, &shares):
		return fmt.Sprintf("❌ Insufficient shares: you hold %d of %s but tried to sell %d.",
			shares.Available, shares.Symbol, shares.Required)
	case errors.As(err, &quote):
		return fmt.Sprintf("⚠️ Couldn't fetch a quote for %s right now. Please try again shortly.", quote.Symbol)
	default:
		log.Printf("trade validation: %v", err)
		return "⚠️ Couldn't process that trade right now. Please try again."
	}
}
