package usecase

import (
	"context"
	"fmt"
	"math"

	"SwingRank/internal/domain/models"
	domsvc "SwingRank/internal/domain/service"
	"SwingRank/internal/services/pattern"
	"SwingRank/internal/services/regime"
	"SwingRank/internal/services/scoring"
	"SwingRank/internal/services/structure"
	"SwingRank/internal/services/tradeplan"
	"SwingRank/pkg/logger"
)

// FinancialAssessor scores a symbol's recent quarterly results. It never fails.
type FinancialAssessor interface {
	Assess(ctx context.Context, symbol string) models.FinancialAssessment
}

// Evaluator runs the per-symbol pipeline: structural signals, pattern,
// rule score, financials, model probability, confidence and trade plan.
// It keeps no state between calls and is safe for concurrent use as long as
// every call gets its own series.
type Evaluator struct {
	liquidity domsvc.LiquidityFilter
	model     domsvc.ProbabilityModel
	blender   domsvc.ConfidenceBlender
	fin       FinancialAssessor
	log       *logger.Logger
}

func NewEvaluator(liq domsvc.LiquidityFilter, model domsvc.ProbabilityModel, blender domsvc.ConfidenceBlender, fin FinancialAssessor, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Evaluator{liquidity: liq, model: model, blender: blender, fin: fin, log: log}
}

// Evaluate scores s against the run's market regime. A returned error is
// either a feature contract violation, which must abort the run, or a model
// failure for this symbol only; every other outcome is reported through
// Evaluation.Skip.
func (e *Evaluator) Evaluate(ctx context.Context, s *models.Series, mr *models.MarketRegime) (*models.Evaluation, error) {
	if s.Empty() {
		return nil, fmt.Errorf("evaluate %s: %w", s.Symbol, models.ErrNoData)
	}
	last := s.Last()
	sig := structure.Classify(s)
	if mr != nil && mr.Benchmark != nil {
		sig.RelativeStrength = regime.RelativeStrength(s, mr.Benchmark, regime.RSLookback)
	}

	ev := &models.Evaluation{
		Symbol:    s.Symbol,
		AsOf:      last.Date,
		LastClose: last.Close,
		Signals:   sig,
		RuleScore: scoring.RuleScore(sig),
	}
	ev.Candidate = models.Candidate{
		Symbol:    s.Symbol,
		RuleScore: ev.RuleScore,
		Pattern:   pattern.Classify(pattern.FromSignals(sig)),
		Financial: models.NeutralAssessment(""),
	}

	switch {
	case !e.liquidity.Passes(s):
		ev.Skip = models.SkipIlliquid
		return ev, nil
	case !sig.Uptrend:
		ev.Skip = models.SkipNoUptrend
		return ev, nil
	case !ev.Candidate.Pattern.Matched():
		ev.Skip = models.SkipVetoed
		return ev, nil
	}

	fa := e.fin.Assess(ctx, s.Symbol)
	ev.Candidate.Financial = fa
	ev.Features = scoring.Features(sig, ev.RuleScore, fa.Score)
	if err := scoring.CheckVector(ev.Features); err != nil {
		return ev, fmt.Errorf("%s: %w", s.Symbol, err)
	}

	p, err := e.model.Predict(ctx, ev.Features)
	if err != nil {
		ev.Skip = models.SkipModelError
		return ev, fmt.Errorf("predict %s: %w", s.Symbol, err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return ev, fmt.Errorf("predict %s: probability %v: %w", s.Symbol, p, domsvc.ErrFeatureContract)
	}

	conf := e.blender.Confidence(domsvc.BlendInput{
		MLProbability:  p,
		RuleScoreNorm:  float64(ev.RuleScore) / scoring.MaxRuleScore,
		Pattern:        ev.Candidate.Pattern.Label,
		VolumeSupport:  sig.VolumeSupport,
		Rejection:      sig.Rejection,
		FinancialScore: fa.Score,
	})
	ev.Candidate.MLProbability = &p
	ev.Candidate.Confidence = &conf

	plan := tradeplan.Compute(last.Close, sig.ATR, p)
	ev.Plan = &plan

	e.log.Debug("candidate",
		logger.String("symbol", s.Symbol),
		logger.String("pattern", string(ev.Candidate.Pattern.Label)),
		logger.Int("rule_score", ev.RuleScore),
		logger.Float64("probability", p),
		logger.Float64("confidence", conf),
	)
	return ev, nil
}
