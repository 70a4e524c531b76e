package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/pkg/logger"
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("ranking run already in progress")

// UniverseFunc returns the symbols to rank, in order.
type UniverseFunc func() ([]string, error)

// StaticUniverse always returns symbols.
func StaticUniverse(symbols []string) UniverseFunc {
	return func() ([]string, error) { return symbols, nil }
}

// DailyRunUseCase runs the ranking and hands the result to every sink.
type DailyRunUseCase struct {
	ranker   *RankingUseCase
	universe UniverseFunc
	store    domrepo.RankingStore
	sinks    []domrepo.RankingSink
	metrics  domrepo.Metrics
	log      *logger.Logger
	timeout  time.Duration

	mu sync.Mutex
}

// NewDailyRunUseCase wires a run. store is also used as a sink and serves
// Latest.
func NewDailyRunUseCase(ranker *RankingUseCase, universe UniverseFunc, store domrepo.RankingStore, sinks []domrepo.RankingSink, metrics domrepo.Metrics, log *logger.Logger) *DailyRunUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &DailyRunUseCase{
		ranker:   ranker,
		universe: universe,
		store:    store,
		sinks:    sinks,
		metrics:  metrics,
		log:      log,
		timeout:  30 * time.Second,
	}
}

// Run ranks today's universe. Sink failures are logged and never fail the run.
func (uc *DailyRunUseCase) Run(ctx context.Context, topN int) (*models.RankingRun, error) {
	if !uc.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer uc.mu.Unlock()

	symbols, err := uc.universe()
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	uc.log.Info("daily run started", logger.Int("universe", len(symbols)), logger.Int("top_n", topN))

	run, err := uc.ranker.RankToday(ctx, symbols, topN)
	if err != nil {
		return nil, err
	}
	uc.dispatch(ctx, run)
	return run, nil
}

func (uc *DailyRunUseCase) dispatch(ctx context.Context, run *models.RankingRun) {
	targets := make([]domrepo.RankingSink, 0, len(uc.sinks)+1)
	if uc.store != nil {
		targets = append(targets, uc.store)
	}
	targets = append(targets, uc.sinks...)

	for _, s := range targets {
		sctx, cancel := context.WithTimeout(ctx, uc.timeout)
		start := time.Now()
		err := s.Publish(sctx, run)
		cancel()
		uc.metrics.RecordLatency("sink_"+s.Name(), time.Since(start).Seconds())
		if err != nil {
			uc.metrics.RecordError("sink_" + s.Name())
			uc.log.Error("sink publish failed",
				logger.String("sink", s.Name()),
				logger.String("run_id", run.ID),
				logger.Error(err),
			)
			continue
		}
		uc.log.Debug("sink published", logger.String("sink", s.Name()), logger.String("run_id", run.ID))
	}
}

// Latest returns the most recent stored run.
func (uc *DailyRunUseCase) Latest(ctx context.Context) (*models.RankingRun, error) {
	if uc.store == nil {
		return nil, errors.New("no ranking store configured")
	}
	return uc.store.Latest(ctx)
}
