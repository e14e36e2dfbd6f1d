package agent

import (
	"sort"
	"strings"
)

// SymbolInfo describes one tradable instrument on the allow-list.
type SymbolInfo struct {
	Symbol string
	Name   string
	Sector string
}

// symbolTable is the trading allow-list. Trades, quotes and watchlist
// additions are only accepted for symbols listed here.
var symbolTable = []SymbolInfo{
	{"AAPL", "Apple Inc.", "Technology"},
	{"MSFT", "Microsoft Corporation", "Technology"},
	{"GOOGL", "Alphabet Inc.", "Technology"},
	{"AMZN", "Amazon.com Inc.", "Technology"},
	{"META", "Meta Platforms Inc.", "Technology"},
	{"NVDA", "NVIDIA Corporation", "Technology"},
	{"TSLA", "Tesla Inc.", "Technology"},
	{"NFLX", "Netflix Inc.", "Technology"},
	{"AMD", "Advanced Micro Devices", "Technology"},
	{"INTC", "Intel Corporation", "Technology"},
	{"CRM", "Salesforce Inc.", "Technology"},
	{"ORCL", "Oracle Corporation", "Technology"},
	{"ADBE", "Adobe Inc.", "Technology"},
	{"JPM", "JPMorgan Chase & Co.", "Financial"},
	{"BAC", "Bank of America Corp.", "Financial"},
	{"WFC", "Wells Fargo & Company", "Financial"},
	{"GS", "Goldman Sachs Group", "Financial"},
	{"MS", "Morgan Stanley", "Financial"},
	{"C", "Citigroup Inc.", "Financial"},
	{"V", "Visa Inc.", "Financial"},
	{"MA", "Mastercard Inc.", "Financial"},
	{"JNJ", "Johnson & Johnson", "Healthcare"},
	{"PFE", "Pfizer Inc.", "Healthcare"},
	{"UNH", "UnitedHealth Group", "Healthcare"},
	{"ABBV", "AbbVie Inc.", "Healthcare"},
	{"MRK", "Merck & Co.", "Healthcare"},
	{"LLY", "Eli Lilly and Company", "Healthcare"},
	{"XOM", "Exxon Mobil Corporation", "Energy"},
	{"CVX", "Chevron Corporation", "Energy"},
	{"COP", "ConocoPhillips", "Energy"},
	{"WMT", "Walmart Inc.", "Consumer"},
	{"PG", "Procter & Gamble", "Consumer"},
	{"KO", "Coca-Cola Company", "Consumer"},
	{"PEP", "PepsiCo Inc.", "Consumer"},
	{"COST", "Costco Wholesale", "Consumer"},
	{"MCD", "McDonald's Corporation", "Consumer"},
	{"NKE", "Nike Inc.", "Consumer"},
	{"DIS", "Walt Disney Company", "Consumer"},
	{"HD", "Home Depot Inc.", "Consumer"},
	{"BA", "Boeing Company", "Industrial"},
	{"CAT", "Caterpillar Inc.", "Industrial"},
	{"GE", "General Electric", "Industrial"},
	{"UPS", "United Parcel Service", "Industrial"},
	{"T", "AT&T Inc.", "Telecom"},
	{"VZ", "Verizon Communications", "Telecom"},
}

var symbolIndex = func() map[string]SymbolInfo {
	m := make(map[string]SymbolInfo, len(symbolTable))
	for _, s := range symbolTable {
		m[s.Symbol] = s
	}
	return m
}()

// IsSupportedSymbol reports whether symbol is on the trading allow-list.
// Matching is case-insensitive.
func IsSupportedSymbol(symbol string) bool {
	_, ok := symbolIndex[strings.ToUpper(symbol)]
	return ok
}

// LookupSymbol returns the allow-list entry for symbol, if present.
func LookupSymbol(symbol string) (SymbolInfo, bool) {
	s, ok := symbolIndex[strings.ToUpper(symbol)]
	return s, ok
}

// SymbolsBySector groups the allow-list by sector for display. Sector names
// are returned in alphabetical order, symbols in table order within each.
func SymbolsBySector() ([]string, map[string][]SymbolInfo) {
	groups := make(map[string][]SymbolInfo)
	for _, s := range symbolTable {
		groups[s.Sector] = append(groups[s.Sector], s)
	}
	sectors := make([]string, 0, len(groups))
	for sector := range groups {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	return sectors, groups
}
