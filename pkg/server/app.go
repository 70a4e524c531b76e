package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SwingRank/internal/domain/repository"
	"SwingRank/internal/handler/api"
	"SwingRank/internal/usecase"
	"SwingRank/pkg/config"
	xhttp "SwingRank/pkg/http"
	applogger "SwingRank/pkg/logger"
)

// Modes accepted by Run.
const (
	ModeRun   = "run"
	ModeServe = "serve"
	ModeSync  = "sync"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	daily      *usecase.DailyRunUseCase
	sync       *usecase.BarSyncUseCase
	handler    xhttp.Handler
	hub        *api.Hub
	store      repository.RankingStore
	universe   usecase.UniverseFunc
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. sync may be nil when
// no bar store is configured.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	daily *usecase.DailyRunUseCase,
	sync *usecase.BarSyncUseCase,
	handler xhttp.Handler,
	hub *api.Hub,
	store repository.RankingStore,
	universe usecase.UniverseFunc,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		daily:    daily,
		sync:     sync,
		handler:  handler,
		hub:      hub,
		store:    store,
		universe: universe,
	}
}

// Run executes mode and returns when it is done or the process is signalled.
func (a *App) Run(mode string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case ModeRun:
		return a.runOnce(ctx)
	case ModeSync:
		return a.syncBars(ctx)
	case ModeServe:
		return a.serve(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func (a *App) runOnce(ctx context.Context) error {
	run, err := a.daily.Run(ctx, a.cfg.Ranking.TopN)
	if err != nil {
		return fmt.Errorf("daily run: %w", err)
	}
	if len(run.Rows) == 0 {
		a.log.Info("no valid setups found today", applogger.String("run_id", run.ID))
		return nil
	}
	for _, r := range run.Rows {
		a.log.Info("pick",
			applogger.Int("rank", r.Rank),
			applogger.String("symbol", r.Symbol),
			applogger.Float64("confidence", r.Confidence),
			applogger.String("pattern", string(r.Pattern)),
			applogger.Float64("tp1", r.TP1),
			applogger.Float64("sl", r.SL),
		)
	}
	return nil
}

func (a *App) syncBars(ctx context.Context) error {
	if a.sync == nil {
		return errors.New("bar sync needs clickhouse.enabled")
	}
	symbols, err := a.universe()
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	period := repository.NormalizePeriod(a.cfg.MarketData.Period)
	if _, err := a.sync.Sync(ctx, symbols, period); err != nil {
		return fmt.Errorf("bar sync: %w", err)
	}
	bench := a.cfg.Benchmark.Symbol
	if _, err := a.sync.Sync(ctx, []string{bench}, repository.NormalizePeriod(a.cfg.Benchmark.Period)); err != nil {
		return fmt.Errorf("benchmark sync: %w", err)
	}
	return nil
}

func (a *App) serve(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Server.RunOnStart {
		go func() {
			if err := a.runOnce(ctx); err != nil {
				a.log.Error("run on start failed", applogger.Error(err))
			}
		}()
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()

	if a.hub != nil {
		_ = a.hub.Close()
	}
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("ranking store close error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
