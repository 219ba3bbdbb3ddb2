package service

import (
	"tredia-investing/internal/domain"

	"github.com/shopspring/decimal"
)

// Placeholder risk figures until a historical risk model exists.
const (
	placeholderBeta        = 1.15
	placeholderSharpeRatio = 1.23
	placeholderMaxDrawdown = -8.5
)

// ComputeMetrics derives portfolio aggregates from the current quotes.
//
// totalChangePercent is totalChange relative to the prior value
// (totalValue - totalChange). When the prior value is zero the result is
// not finite; callers decide how to present it.
func ComputeMetrics(quotes []domain.Quote) domain.PortfolioMetrics {
	if len(quotes) == 0 {
		return domain.PortfolioMetrics{
			Beta:       1.0,
			Volatility: domain.VolatilityLow,
		}
	}

	totalValue := decimal.Zero
	totalChange := decimal.Zero
	for _, q := range quotes {
		totalValue = totalValue.Add(decimal.NewFromFloat(q.Price))
		totalChange = totalChange.Add(decimal.NewFromFloat(q.Change))
	}

	value, _ := totalValue.Float64()
	change, _ := totalChange.Float64()
	prior, _ := totalValue.Sub(totalChange).Float64()
	pct := change / prior * 100

	return domain.PortfolioMetrics{
		TotalValue:         value,
		TotalChange:        change,
		TotalChangePercent: pct,
		Beta:               placeholderBeta,
		Volatility:         classifyVolatility(pct),
		SharpeRatio:        placeholderSharpeRatio,
		MaxDrawdown:        placeholderMaxDrawdown,
	}
}

func classifyVolatility(changePercent float64) string {
	switch {
	case changePercent > 5:
		return domain.VolatilityHigh
	case changePercent > 2:
		return domain.VolatilityMedium
	default:
		return domain.VolatilityLow
	}
}
