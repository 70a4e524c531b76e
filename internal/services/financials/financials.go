// Package financials scores quarter-over-quarter revenue growth.
package financials

import (
	"context"
	"fmt"
	"math"
	"strings"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/domain/repository"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/util"
)

// RevenueKeys are tried in order; the first key present in both quarters wins.
var RevenueKeys = []string{"Total Revenue", "Operating Revenue", "Revenue"}

// Neutral reasons.
const (
	ReasonNoData   = "NoData"
	ReasonNoKey    = "NoKey"
	ReasonTypeErr  = "TypeErr"
	ReasonZeroPrev = "ZeroPrev"
	ReasonPanic    = "Panic"
)

// Analyze maps revenue growth g = (latest-previous)/previous to a label
// clamp(0.5+2g, 0, 1) rounded to 2 decimals and a feature score
// (label-0.5)*0.2. Unusable data yields the neutral variant with score 0.
func Analyze(f *models.QuarterlyFinancials) (out models.FinancialAssessment) {
	defer func() {
		if r := recover(); r != nil {
			out = models.NeutralAssessment(fmt.Sprintf("%s: %v", ReasonPanic, r))
		}
	}()

	if f == nil || len(f.Quarters) < 2 {
		return models.NeutralAssessment("")
	}
	latest, previous := f.Quarters[0].Items, f.Quarters[1].Items

	var cur, prev float64
	found := false
	for _, k := range RevenueKeys {
		c, ok1 := latest[k]
		p, ok2 := previous[k]
		if ok1 && ok2 {
			cur, prev, found = c, p, true
			break
		}
	}
	if !found {
		return models.NeutralAssessment(ReasonNoKey)
	}
	if !finite(cur) || !finite(prev) {
		return models.NeutralAssessment(ReasonTypeErr)
	}
	if prev == 0 {
		return models.NeutralAssessment(ReasonZeroPrev)
	}

	growth := (cur - prev) / prev
	label := util.Round(util.Clamp(0.5+2*growth, 0, 1), 2)
	return models.FinancialAssessment{
		Label: label,
		Score: (label - 0.5) * 0.2,
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Scorer fetches quarterly financials and analyzes them.
type Scorer struct {
	src    repository.FinancialSource
	suffix string
	log    *logger.Logger
}

// NewScorer returns a Scorer. A nil source makes every assessment neutral.
func NewScorer(src repository.FinancialSource, suffix string, log *logger.Logger) *Scorer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scorer{src: src, suffix: suffix, log: log}
}

// Ticker appends the exchange suffix when configured and missing.
func (s *Scorer) Ticker(symbol string) string {
	if s.suffix == "" || strings.HasSuffix(symbol, s.suffix) {
		return symbol
	}
	return symbol + s.suffix
}

// Assess never fails; any problem degrades to the neutral variant.
func (s *Scorer) Assess(ctx context.Context, symbol string) models.FinancialAssessment {
	if s == nil || s.src == nil {
		return models.NeutralAssessment("")
	}
	ticker := s.Ticker(symbol)
	f, err := s.src.LoadQuarterlyFinancials(ctx, ticker)
	if err != nil {
		s.log.Warn("financials unavailable", logger.String("symbol", ticker), logger.Error(err))
		return models.NeutralAssessment(ReasonNoData)
	}
	a := Analyze(f)
	if a.Neutral && a.Reason != "" {
		s.log.Warn("financials degraded to neutral", logger.String("symbol", ticker), logger.String("reason", a.Reason))
	}
	return a
}
