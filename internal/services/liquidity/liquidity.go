// Package liquidity holds the default tradability predicate.
package liquidity

import "SwingRank/internal/domain/models"

// Filter passes series whose last close is at least MinPrice and whose mean
// daily turnover (close x volume) over Lookback bars is at least MinAvgTurnover.
type Filter struct {
	Lookback       int
	MinPrice       float64
	MinAvgTurnover float64
}

func NewFilter(lookback int, minPrice, minAvgTurnover float64) *Filter {
	return &Filter{Lookback: lookback, MinPrice: minPrice, MinAvgTurnover: minAvgTurnover}
}

// Passes is false for series shorter than Lookback.
func (f *Filter) Passes(s *models.Series) bool {
	if f.Lookback <= 0 || s.Len() < f.Lookback {
		return false
	}
	if s.Last().Close < f.MinPrice {
		return false
	}
	turnover := 0.0
	for _, b := range s.Bars[s.Len()-f.Lookback:] {
		turnover += b.Close * b.Volume
	}
	return turnover/float64(f.Lookback) >= f.MinAvgTurnover
}
