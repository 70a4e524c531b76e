package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	domsvc "SwingRank/internal/domain/service"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/util"
)

// RegimeSource produces the market regime snapshot shared by a run.
type RegimeSource interface {
	Snapshot(ctx context.Context) *models.MarketRegime
}

// SymbolEvaluator scores one symbol's series. *Evaluator is the production
// implementation.
type SymbolEvaluator interface {
	Evaluate(ctx context.Context, s *models.Series, mr *models.MarketRegime) (*models.Evaluation, error)
}

type RankingOption func(*RankingUseCase)

// WithWorkers bounds how many symbols are evaluated at once.
func WithWorkers(n int) RankingOption {
	return func(uc *RankingUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithSymbolTimeout bounds one symbol's fetch and evaluation.
func WithSymbolTimeout(d time.Duration) RankingOption {
	return func(uc *RankingUseCase) {
		if d > 0 {
			uc.symbolTimeout = d
		}
	}
}

func WithMinHistory(n int) RankingOption {
	return func(uc *RankingUseCase) {
		if n > 0 {
			uc.minHistory = n
		}
	}
}

// WithBearishMinScore sets the rule score a candidate needs in a BEARISH market.
func WithBearishMinScore(n int) RankingOption {
	return func(uc *RankingUseCase) { uc.bearishMinScore = n }
}

func WithPeriod(p domrepo.Period) RankingOption {
	return func(uc *RankingUseCase) { uc.period = domrepo.NormalizePeriod(string(p)) }
}

func WithClock(now func() time.Time) RankingOption {
	return func(uc *RankingUseCase) { uc.now = now }
}

// RankingUseCase ranks a universe for the current day.
type RankingUseCase struct {
	bars    domrepo.BarSource
	regime  RegimeSource
	eval    SymbolEvaluator
	metrics domrepo.Metrics
	log     *logger.Logger

	period          domrepo.Period
	workers         int
	symbolTimeout   time.Duration
	minHistory      int
	bearishMinScore int
	now             func() time.Time
}

func NewRankingUseCase(bars domrepo.BarSource, regime RegimeSource, eval SymbolEvaluator, metrics domrepo.Metrics, log *logger.Logger, opts ...RankingOption) *RankingUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	uc := &RankingUseCase{
		bars:            bars,
		regime:          regime,
		eval:            eval,
		metrics:         metrics,
		log:             log,
		period:          domrepo.DefaultPeriod(),
		workers:         4,
		symbolTimeout:   30 * time.Second,
		minHistory:      100,
		bearishMinScore: 8,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type outcome struct {
	ev   *models.Evaluation
	skip models.SkipReason
}

// RankToday evaluates every symbol of universe against one regime snapshot
// and returns the topN candidates by descending confidence. Ties keep
// universe order. A feature contract violation or a cancelled ctx fails the
// run; per-symbol timeouts are skips.
func (uc *RankingUseCase) RankToday(ctx context.Context, universe []string, topN int) (*models.RankingRun, error) {
	if topN < 1 {
		return nil, fmt.Errorf("top_n must be positive, got %d", topN)
	}
	start := time.Now()
	symbols := util.NormalizeSymbols(universe)
	mr := uc.regime.Snapshot(ctx)
	if mr.Status == models.RegimeBearish {
		uc.log.Warn("bearish market regime, stricter filters apply",
			logger.Int("bearish_min_score", uc.bearishMinScore))
	}

	results := make([]outcome, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			out, err := uc.evaluateSymbol(gctx, sym, mr)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.metrics.RecordError("feature_contract")
		return nil, fmt.Errorf("ranking aborted: %w", err)
	}
	// Skips collected after the caller gave up are not a result.
	if err := ctx.Err(); err != nil {
		uc.metrics.RecordError("cancelled")
		return nil, fmt.Errorf("ranking cancelled: %w", err)
	}

	run := &models.RankingRun{
		ID:       uuid.NewString(),
		Date:     util.Day(uc.now()),
		Regime:   mr.Status,
		Universe: len(symbols),
		Skipped:  map[models.SkipReason]int{},
	}
	var picks []*models.Evaluation
	for i, r := range results {
		if r.skip != "" || r.ev == nil {
			run.Skipped[r.skip]++
			uc.metrics.RecordSymbol(string(r.skip))
			uc.log.Debug("symbol skipped", logger.String("symbol", symbols[i]), logger.String("reason", string(r.skip)))
			continue
		}
		uc.metrics.RecordSymbol("candidate")
		picks = append(picks, r.ev)
	}
	run.Evaluated = len(picks)
	run.Rows = Rank(picks, topN)
	run.Duration = time.Since(start)

	uc.metrics.RecordRun(string(run.Regime), len(run.Rows), run.Duration)
	uc.log.Info("ranking finished",
		logger.String("run_id", run.ID),
		logger.String("regime", string(run.Regime)),
		logger.Int("universe", run.Universe),
		logger.Int("candidates", run.Evaluated),
		logger.Int("ranked", len(run.Rows)),
		logger.Duration("duration_ms", run.Duration),
	)
	return run, nil
}

// Rank sorts candidates by confidence, highest first and stable for ties,
// keeps topN and numbers them from 1.
func Rank(picks []*models.Evaluation, topN int) []models.RankedRow {
	sorted := append([]*models.Evaluation(nil), picks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return *sorted[i].Candidate.Confidence > *sorted[j].Candidate.Confidence
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	rows := make([]models.RankedRow, 0, len(sorted))
	for i, ev := range sorted {
		rows = append(rows, models.NewRankedRow(i+1, ev.Candidate, *ev.Plan))
	}
	return rows
}

// evaluateSymbol isolates one symbol: its failures and panics become a skip.
// Only a feature contract violation is returned.
func (uc *RankingUseCase) evaluateSymbol(ctx context.Context, symbol string, mr *models.MarketRegime) (out outcome, err error) {
	ctx, cancel := context.WithTimeout(ctx, uc.symbolTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			uc.log.Error("symbol evaluation panicked",
				logger.String("symbol", symbol),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
			out, err = outcome{skip: models.SkipPanic}, nil
		}
	}()

	s, err := uc.bars.LoadDailyBars(ctx, symbol, uc.period)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return outcome{skip: models.SkipNoData}, nil
		}
		uc.log.Warn("bar fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return outcome{skip: models.SkipFetchError}, nil
	}
	if s.Len() < uc.minHistory {
		return outcome{skip: models.SkipShortHistory}, nil
	}

	ev, err := uc.eval.Evaluate(ctx, s, mr)
	if err != nil {
		if errors.Is(err, domsvc.ErrFeatureContract) {
			return outcome{}, err
		}
		uc.log.Warn("model prediction failed", logger.String("symbol", symbol), logger.Error(err))
		return outcome{skip: models.SkipModelError}, nil
	}
	if ev.Skip != "" {
		return outcome{skip: ev.Skip}, nil
	}
	if mr.Blocks() && ev.RuleScore < uc.bearishMinScore {
		return outcome{skip: models.SkipBearishGate}, nil
	}
	return outcome{ev: ev}, nil
}

// EvaluateOne scores a single symbol against the current regime outside a
// run. Skipped symbols are still returned with Skip set so callers can see
// why; only a fetch failure or a feature contract violation is an error.
func (uc *RankingUseCase) EvaluateOne(ctx context.Context, symbol string, period domrepo.Period) (*models.Evaluation, error) {
	syms := util.NormalizeSymbols([]string{symbol})
	if len(syms) == 0 {
		return nil, fmt.Errorf("empty symbol")
	}
	if period == "" {
		period = uc.period
	}
	ctx, cancel := context.WithTimeout(ctx, uc.symbolTimeout)
	defer cancel()

	s, err := uc.bars.LoadDailyBars(ctx, syms[0], period)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", syms[0], err)
	}
	mr := uc.regime.Snapshot(ctx)
	ev, err := uc.eval.Evaluate(ctx, s, mr)
	if err != nil && (ev == nil || errors.Is(err, domsvc.ErrFeatureContract)) {
		return nil, err
	}
	switch {
	case ev.Skip != "":
	case s.Len() < uc.minHistory:
		ev.Skip = models.SkipShortHistory
	case mr.Blocks() && ev.RuleScore < uc.bearishMinScore:
		ev.Skip = models.SkipBearishGate
	}
	return ev, nil
}
