package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/pkg/logger"
)

// SyncReport counts the outcome of a bar sync.
type SyncReport struct {
	Symbols int
	Stored  int
	Bars    int
	Failed  map[string]string
}

// BarSyncUseCase copies daily history from a provider into a bar store so
// later runs can rank from the database.
type BarSyncUseCase struct {
	src     domrepo.BarSource
	store   domrepo.BarStore
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewBarSyncUseCase(src domrepo.BarSource, store domrepo.BarStore, metrics domrepo.Metrics, log *logger.Logger) *BarSyncUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &BarSyncUseCase{src: src, store: store, metrics: metrics, log: log}
}

// Sync stores period bars for every symbol. A failing symbol is recorded and
// the sync goes on; only a cancelled context stops it early.
func (uc *BarSyncUseCase) Sync(ctx context.Context, symbols []string, period domrepo.Period) (*SyncReport, error) {
	rep := &SyncReport{Symbols: len(symbols), Failed: map[string]string{}}
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		start := time.Now()
		n, err := uc.syncOne(ctx, sym, period)
		if err != nil {
			rep.Failed[sym] = err.Error()
			uc.metrics.RecordError("bar_sync")
			if !errors.Is(err, models.ErrNoData) {
				uc.log.Warn("bar sync failed", logger.String("symbol", sym), logger.Error(err))
			}
			continue
		}
		rep.Stored++
		rep.Bars += n
		uc.metrics.RecordLatency("bar_sync", time.Since(start).Seconds())
	}
	uc.log.Info("bar sync finished",
		logger.Int("symbols", rep.Symbols),
		logger.Int("stored", rep.Stored),
		logger.Int("bars", rep.Bars),
		logger.Int("failed", len(rep.Failed)),
	)
	return rep, nil
}

func (uc *BarSyncUseCase) syncOne(ctx context.Context, symbol string, period domrepo.Period) (int, error) {
	s, err := uc.src.LoadDailyBars(ctx, symbol, period)
	if err != nil {
		return 0, err
	}
	if err := uc.store.StoreBars(ctx, symbol, s.Bars); err != nil {
		return 0, fmt.Errorf("store %s: %w", symbol, err)
	}
	return s.Len(), nil
}
