package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financegpt/internal/market"
	"financegpt/internal/models"
)

// formatMoney renders a decimal as $1,234.56.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "$" + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

func formatCount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := groupThousands(fmt.Sprintf("%d", n))
	if neg {
		return "-" + s
	}
	return s
}

// changeEmoji picks the direction marker for a percentage move.
func changeEmoji(change decimal.Decimal) string {
	switch {
	case change.IsNegative():
		return "📉"
	case change.IsZero():
		return "➖"
	default:
		return "📈"
	}
}

func formatChange(change decimal.Decimal) string {
	s := change.StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

func formatQuote(q *models.Quote) string {
	name := q.Symbol
	if info, ok := LookupSymbol(q.Symbol); ok {
		name = fmt.Sprintf("%s (%s)", info.Symbol, info.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n", name)
	fmt.Fprintf(&sb, "Price: %s %s %s\n", formatMoney(q.Price), changeEmoji(q.ChangePercent), formatChange(q.ChangePercent))
	if q.Volume > 0 {
		fmt.Fprintf(&sb, "Volume: %s\n", formatCount(q.Volume))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAnalysis(q *models.Quote) string {
	var sb strings.Builder
	sb.WriteString(formatQuote(q))
	sb.WriteString("\n\n")
	change := q.ChangePercent
	switch {
	case change.GreaterThanOrEqual(decimal.NewFromInt(2)):
		fmt.Fprintf(&sb, "💹 %s is showing strong upward momentum today.", q.Symbol)
	case change.GreaterThanOrEqual(decimal.Zero):
		fmt.Fprintf(&sb, "💹 %s is trading modestly higher today.", q.Symbol)
	case change.GreaterThan(decimal.NewFromInt(-2)):
		fmt.Fprintf(&sb, "💹 %s is trading slightly lower today.", q.Symbol)
	default:
		fmt.Fprintf(&sb, "💹 %s is under significant selling pressure today.", q.Symbol)
	}
	if info, ok := LookupSymbol(q.Symbol); ok {
		fmt.Fprintf(&sb, " Sector: %s.", info.Sector)
	}
	return sb.String()
}

const confirmPrompt = "Please confirm by saying 'yes' or 'confirm'"

// formatTradeProposal renders the confirmation prompt. The quote is optional;
// when present the day change and volume are echoed alongside the price.
func formatTradeProposal(t *models.PendingTrade, q *models.Quote) string {
	var sb strings.Builder
	sb.WriteString("💹 Trade Confirmation\n")
	fmt.Fprintf(&sb, "%s %d shares of %s at %s per share\n",
		t.Action, t.Shares, t.Symbol, formatMoney(t.Price))
	fmt.Fprintf(&sb, "Total: %s\n", formatMoney(t.TotalAmount))
	if q != nil {
		fmt.Fprintf(&sb, "Today: %s %s", changeEmoji(q.ChangePercent), formatChange(q.ChangePercent))
		if q.Volume > 0 {
			fmt.Fprintf(&sb, ", volume %s", formatCount(q.Volume))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(confirmPrompt)
	return sb.String()
}

func formatTradeExecuted(t *models.PendingTrade, balance decimal.Decimal) string {
	var sb strings.Builder
	verb := "Bought"
	if t.Action == models.Sell {
		verb = "Sold"
	}
	fmt.Fprintf(&sb, "✅ Trade executed: %s %d shares of %s at %s (total %s)\n",
		verb, t.Shares, t.Symbol, formatMoney(t.Price), formatMoney(t.TotalAmount))
	fmt.Fprintf(&sb, "💰 New balance: %s", formatMoney(balance))
	return sb.String()
}

func formatBalance(acct *models.Account) string {
	return fmt.Sprintf("💰 Account balance: %s", formatMoney(acct.Balance))
}

// formatPortfolio renders holdings with live valuations when quotes are
// available, falling back to cost basis when they are not.
func formatPortfolio(acct *models.Account, positions []models.Position) string {
	if len(positions) == 0 {
		return fmt.Sprintf("📋 Your portfolio is empty.\n💰 Cash balance: %s", formatMoney(acct.Balance))
	}
	var sb strings.Builder
	sb.WriteString("📋 Your Portfolio\n")
	total := decimal.Zero
	cost := decimal.Zero
	for _, p := range positions {
		price := p.CurrentPrice
		if price.IsZero() {
			price = p.AveragePrice
		}
		shares := decimal.NewFromInt(p.Shares)
		value := price.Mul(shares)
		total = total.Add(value)
		cost = cost.Add(p.AveragePrice.Mul(shares))
		fmt.Fprintf(&sb, "  %s: %d shares @ %s avg, now %s (%s)\n",
			p.Symbol, p.Shares, formatMoney(p.AveragePrice), formatMoney(price), formatMoney(value))
	}
	fmt.Fprintf(&sb, "📊 Holdings value: %s\n", formatMoney(total))
	if cost.IsPositive() {
		pl := total.Sub(cost)
		pct := pl.Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
		fmt.Fprintf(&sb, "%s P/L: %s (%s)\n", changeEmoji(pl), formatMoney(pl), formatChange(pct))
	}
	fmt.Fprintf(&sb, "💰 Cash balance: %s\n", formatMoney(acct.Balance))
	fmt.Fprintf(&sb, "Total account value: %s", formatMoney(total.Add(acct.Balance)))
	return sb.String()
}

// formatWatchlist renders each watched symbol with its latest quote and the
// average move across the list.
func formatWatchlist(symbols []string, quotes map[string]*models.Quote) string {
	if len(symbols) == 0 {
		return "📋 Your watchlist is empty. Try 'add AAPL to watchlist'."
	}
	var sb strings.Builder
	sb.WriteString("📋 Your Watchlist\n")
	sum := decimal.Zero
	quoted := 0
	for _, sym := range symbols {
		q, ok := quotes[sym]
		if !ok {
			fmt.Fprintf(&sb, "  %s: quote unavailable\n", sym)
			continue
		}
		fmt.Fprintf(&sb, "  %s %s: %s (%s)\n",
			changeEmoji(q.ChangePercent), sym, formatMoney(q.Price), formatChange(q.ChangePercent))
		sum = sum.Add(q.ChangePercent)
		quoted++
	}
	if quoted > 0 {
		avg := sum.Div(decimal.NewFromInt(int64(quoted)))
		fmt.Fprintf(&sb, "Average change: %s %s", changeEmoji(avg), formatChange(avg))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// marketOpen reports whether US regular trading hours are in effect,
// approximated as weekdays 13:00-20:00 UTC.
func marketOpen(now time.Time) bool {
	utc := now.UTC()
	switch utc.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := utc.Hour()
	return h >= 13 && h < 20
}

// formatMarketSummary renders the major index quotes with an open/closed
// banner and a one-line sentiment read.
func formatMarketSummary(now time.Time, quotes map[string]*models.Quote) string {
	var sb strings.Builder
	if marketOpen(now) {
		sb.WriteString("📊 Market Summary (market is open)\n")
	} else {
		sb.WriteString("📊 Market Summary (market is closed)\n")
	}

	names := make([]string, 0, len(market.Indices))
	for sym := range market.Indices {
		names = append(names, sym)
	}
	sort.Strings(names)

	sum := decimal.Zero
	quoted := 0
	for _, sym := range names {
		q, ok := quotes[sym]
		if !ok {
			fmt.Fprintf(&sb, "  %s: quote unavailable\n", market.Indices[sym])
			continue
		}
		fmt.Fprintf(&sb, "  %s %s: %s (%s)\n",
			changeEmoji(q.ChangePercent), market.Indices[sym], formatMoney(q.Price), formatChange(q.ChangePercent))
		sum = sum.Add(q.ChangePercent)
		quoted++
	}

	if quoted > 0 {
		avg := sum.Div(decimal.NewFromInt(int64(quoted)))
		switch {
		case avg.GreaterThanOrEqual(decimal.NewFromFloat(0.5)):
			sb.WriteString("💹 Sentiment: Bullish")
		case avg.GreaterThan(decimal.NewFromFloat(-0.5)):
			sb.WriteString("💹 Sentiment: Neutral")
		default:
			sb.WriteString("💹 Sentiment: Bearish")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSymbols() string {
	var sb strings.Builder
	sb.WriteString("📋 Supported Symbols\n")
	sectors, groups := SymbolsBySector()
	for _, sector := range sectors {
		fmt.Fprintf(&sb, "\n%s:\n", sector)
		for _, s := range groups[sector] {
			fmt.Fprintf(&sb, "  %s - %s\n", s.Symbol, s.Name)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHelp() string {
	return strings.TrimSpace(`
📋 What I can do:
  • quote AAPL           - latest price for a symbol
  • analyze TSLA         - price plus a quick read
  • market summary       - major indices at a glance
  • buy 10 AAPL          - stage a buy (asks for confirmation)
  • sell 5 TSLA          - stage a sell (asks for confirmation)
  • balance              - your cash balance
  • portfolio            - your holdings and account value
  • watchlist            - your watched symbols
  • add NVDA to watchlist / remove NVDA from watchlist
  • symbols              - every symbol I support
Anything else, just ask in plain English.`)
}
