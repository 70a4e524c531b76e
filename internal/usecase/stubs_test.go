package usecase

import (
	"context"
	"sync"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	domsvc "SwingRank/internal/domain/service"
)

type liquidityStub bool

func (l liquidityStub) Passes(*models.Series) bool { return bool(l) }

type modelStub struct {
	mu    sync.Mutex
	p     float64
	err   error
	calls int
	last  models.FeatureVector
}

func (m *modelStub) Predict(_ context.Context, x models.FeatureVector) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = x
	return m.p, m.err
}

type blenderStub struct {
	conf float64
	last domsvc.BlendInput
}

func (b *blenderStub) Confidence(in domsvc.BlendInput) float64 {
	b.last = in
	return b.conf
}

type finStub models.FinancialAssessment

func (f finStub) Assess(context.Context, string) models.FinancialAssessment {
	return models.FinancialAssessment(f)
}

type regimeStub models.RegimeStatus

func (r regimeStub) Snapshot(context.Context) *models.MarketRegime {
	return &models.MarketRegime{Status: models.RegimeStatus(r)}
}

// barsStub serves series by symbol; an entry in errs wins over series.
type barsStub struct {
	series map[string]*models.Series
	errs   map[string]error
}

func (b barsStub) LoadDailyBars(_ context.Context, symbol string, _ domrepo.Period) (*models.Series, error) {
	if err, ok := b.errs[symbol]; ok {
		return nil, err
	}
	s, ok := b.series[symbol]
	if !ok {
		return nil, models.ErrNoData
	}
	return s.Clone(), nil
}

// evalStub returns canned evaluations keyed by symbol.
type evalStub struct {
	evals  map[string]*models.Evaluation
	errs   map[string]error
	panics map[string]bool
}

func (e evalStub) Evaluate(_ context.Context, s *models.Series, _ *models.MarketRegime) (*models.Evaluation, error) {
	if e.panics[s.Symbol] {
		panic("boom")
	}
	if err, ok := e.errs[s.Symbol]; ok {
		return nil, err
	}
	ev, ok := e.evals[s.Symbol]
	if !ok {
		return &models.Evaluation{Symbol: s.Symbol, Skip: models.SkipNoUptrend}, nil
	}
	return ev, nil
}

// candidate builds a rankable evaluation.
func candidate(symbol string, score int, prob, conf float64) *models.Evaluation {
	return &models.Evaluation{
		Symbol:    symbol,
		RuleScore: score,
		Candidate: models.Candidate{
			Symbol:        symbol,
			RuleScore:     score,
			Pattern:       models.Match(models.PatternMomentum),
			MLProbability: &prob,
			Confidence:    &conf,
			Financial:     models.NeutralAssessment(""),
		},
		Plan: &models.TradePlan{TP1: 101, SL: 99},
	}
}

type sinkStub struct {
	name string
	err  error
	runs []*models.RankingRun
}

func (s *sinkStub) Name() string { return s.name }

func (s *sinkStub) Publish(_ context.Context, run *models.RankingRun) error {
	s.runs = append(s.runs, run)
	return s.err
}

// ctxBars fails like a real client once ctx is done.
type ctxBars struct{ barsStub }

func (b ctxBars) LoadDailyBars(ctx context.Context, symbol string, p domrepo.Period) (*models.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.barsStub.LoadDailyBars(ctx, symbol, p)
}

// slowBars blocks until ctx is done for the symbols in slow.
type slowBars struct {
	barsStub
	slow map[string]bool
}

func (b slowBars) LoadDailyBars(ctx context.Context, symbol string, p domrepo.Period) (*models.Series, error) {
	if b.slow[symbol] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.barsStub.LoadDailyBars(ctx, symbol, p)
}
