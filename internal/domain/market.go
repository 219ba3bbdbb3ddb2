package domain

import "strings"

// DefaultHoldings are the symbols the dashboard tracks when none are configured.
var DefaultHoldings = []string{"AAPL", "MSFT", "GOOGL", "TSLA"}

// fallbackQuotes are served when the quote source is unavailable.
var fallbackQuotes = map[string]Quote{
	"AAPL":  {Symbol: "AAPL", Price: 198.75, Change: 3.25, ChangePercent: 1.66, Volume: 52000000},
	"MSFT":  {Symbol: "MSFT", Price: 415.80, Change: 8.60, ChangePercent: 2.11, Volume: 32000000},
	"GOOGL": {Symbol: "GOOGL", Price: 168.45, Change: 2.15, ChangePercent: 1.29, Volume: 25000000},
	"TSLA":  {Symbol: "TSLA", Price: 265.30, Change: 15.65, ChangePercent: 6.27, Volume: 45000000},
}

// FallbackQuote returns the built-in quote for symbol, or a generic
// 100.00 / 1,000,000 record for symbols outside the table.
func FallbackQuote(symbol string) Quote {
	if q, ok := fallbackQuotes[symbol]; ok {
		return q
	}
	return Quote{
		Symbol:        symbol,
		Price:         100.00,
		Change:        0.00,
		ChangePercent: 0.00,
		Volume:        1000000,
	}
}

// MarketIndex identifies an index shown on the dashboard.
type MarketIndex struct {
	Symbol string
	Name   string
}

// TrackedIndices are fetched in this order.
var TrackedIndices = []MarketIndex{
	{Symbol: "^GSPC", Name: "S&P 500"},
	{Symbol: "^IXIC", Name: "NASDAQ"},
	{Symbol: "^GSPTSE", Name: "TSX"},
}

var fallbackIndices = map[string]IndexQuote{
	"^GSPC":   {Symbol: "^GSPC", Name: "S&P 500", Price: 4567.25, Change: 45.30, ChangePercent: 1.0},
	"^IXIC":   {Symbol: "^IXIC", Name: "NASDAQ", Price: 14250.85, Change: 185.40, ChangePercent: 1.32},
	"^GSPTSE": {Symbol: "^GSPTSE", Name: "TSX", Price: 21250.75, Change: 125.50, ChangePercent: 0.59},
}

// FallbackIndex returns the built-in row for idx. Each tracked index has its
// own seed row rather than all sharing the S&P 500 figures; unknown indices
// reuse the S&P 500 figures under their own symbol and name.
func FallbackIndex(idx MarketIndex) IndexQuote {
	if q, ok := fallbackIndices[idx.Symbol]; ok {
		return q
	}
	q := fallbackIndices["^GSPC"]
	q.Symbol = idx.Symbol
	q.Name = idx.Name
	return q
}

// FallbackIndices returns the built-in rows for all tracked indices.
func FallbackIndices() []IndexQuote {
	out := make([]IndexQuote, 0, len(TrackedIndices))
	for _, idx := range TrackedIndices {
		out = append(out, FallbackIndex(idx))
	}
	return out
}

// FallbackNews is the static headline list used when no news source is available.
func FallbackNews() []NewsItem {
	return []NewsItem{
		{
			Title:   "Fed Signals Potential Rate Changes",
			Summary: "The Federal Reserve hints at upcoming monetary policy adjustments that could impact your tech holdings.",
			Time:    "2 hours ago",
			Impact:  ImpactMedium,
		},
		{
			Title:   "Apple Reports Strong Q4 Earnings",
			Summary: "Apple beats expectations with strong iPhone sales and services revenue growth.",
			Time:    "4 hours ago",
			Impact:  ImpactHigh,
		},
		{
			Title:   "Market Volatility Expected This Week",
			Summary: "Economic indicators suggest increased market volatility ahead of earnings season.",
			Time:    "6 hours ago",
			Impact:  ImpactLow,
		},
		{
			Title:   "Tech Sector Shows Resilience",
			Summary: "Major technology companies continue to demonstrate strong fundamentals despite market uncertainty.",
			Time:    "8 hours ago",
			Impact:  ImpactMedium,
		},
		{
			Title:   "Investors Eye AI Opportunities",
			Summary: "Artificial intelligence investments gain momentum as companies integrate AI into their operations.",
			Time:    "10 hours ago",
			Impact:  ImpactHigh,
		},
	}
}

// MaxSymbolLen bounds the tickers accepted from clients, keeping arbitrary
// input out of the quote cache keyspace.
const MaxSymbolLen = 16

// ValidSymbol reports whether a normalized ticker is acceptable for lookup.
func ValidSymbol(symbol string) bool {
	return symbol != "" && len(symbol) <= MaxSymbolLen
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// QuoteCacheKey returns the cache key for a single-symbol quote.
func QuoteCacheKey(symbol string) string {
	return "quote_" + symbol
}

const (
	IndicesCacheKey = "market_indices"
	NewsCacheKey    = "market_news"
)
