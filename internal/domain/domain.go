package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Quote is the latest price and change figures for a single instrument.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// IndexQuote is the latest level of a market index.
type IndexQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

type NewsItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Time    string `json:"time"`
	Impact  Impact `json:"impact"`
	URL     string `json:"url,omitempty"`
}

// ChartSnapshot is the normalized part of an upstream chart payload.
type ChartSnapshot struct {
	Symbol        string
	Price         float64
	PreviousClose float64
	Volume        int64
}

// Provenance tells callers whether a value came from the live source, is an
// expired live value served because the source failed, or is a built-in placeholder.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceStale    Provenance = "stale"
	ProvenanceFallback Provenance = "fallback"
)

func (p Provenance) rank() int {
	switch p {
	case ProvenanceLive:
		return 2
	case ProvenanceStale:
		return 1
	default:
		return 0
	}
}

// Weakest returns the least trustworthy of the given provenances.
// With no arguments it returns ProvenanceFallback.
func Weakest(ps ...Provenance) Provenance {
	if len(ps) == 0 {
		return ProvenanceFallback
	}
	weakest := ps[0]
	for _, p := range ps[1:] {
		if p.rank() < weakest.rank() {
			weakest = p
		}
	}
	return weakest
}

// Result wraps every aggregator payload with where it came from and when it was fetched.
type Result[T any] struct {
	Data       T          `json:"data"`
	Provenance Provenance `json:"provenance"`
	FetchedAt  time.Time  `json:"fetchedAt"`
}

const (
	VolatilityHigh   = "High"
	VolatilityMedium = "Medium"
	VolatilityLow    = "Low"
)

// PortfolioMetrics is derived from the current quotes on every read and never stored.
type PortfolioMetrics struct {
	TotalValue         float64 `json:"totalValue"`
	TotalChange        float64 `json:"totalChange"`
	TotalChangePercent float64 `json:"totalChangePercent"`
	Beta               float64 `json:"beta"`
	Volatility         string  `json:"volatility"`
	SharpeRatio        float64 `json:"sharpeRatio"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
}

// MarshalJSON encodes a non-finite TotalChangePercent as null, since
// encoding/json rejects NaN and Inf.
func (m PortfolioMetrics) MarshalJSON() ([]byte, error) {
	type plain PortfolioMetrics
	out := struct {
		plain
		TotalChangePercent *float64 `json:"totalChangePercent"`
	}{plain: plain(m)}
	if !math.IsNaN(m.TotalChangePercent) && !math.IsInf(m.TotalChangePercent, 0) {
		pct := m.TotalChangePercent
		out.TotalChangePercent = &pct
	}
	return json.Marshal(out)
}
