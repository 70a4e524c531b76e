package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/internal/service/ratelimit"
	xhttp "SwingRank/pkg/http"
	"SwingRank/pkg/logger"
)

// FetchPipeline sits between the evaluators and a market-data provider.
// It throttles requests, retries transient failures with capped exponential
// backoff, and drops malformed bars before they reach any indicator.
type FetchPipeline struct {
	provider   string
	bars       domrepo.BarSource
	fin        domrepo.FinancialSource
	metrics    domrepo.Metrics
	limiter    *ratelimit.Limiter
	log        *logger.Logger
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type PipelineOption func(*FetchPipeline)

// WithLimiter throttles every request through l, keyed by provider name.
func WithLimiter(l *ratelimit.Limiter) PipelineOption {
	return func(p *FetchPipeline) { p.limiter = l }
}

// WithMaxRetries sets how many times a retryable failure is retried.
func WithMaxRetries(n int) PipelineOption {
	return func(p *FetchPipeline) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithBackoff sets the first and the largest delay between attempts.
func WithBackoff(min, max time.Duration) PipelineOption {
	return func(p *FetchPipeline) {
		if min > 0 {
			p.backoffMin = min
		}
		if max >= p.backoffMin {
			p.backoffMax = max
		}
	}
}

// WithFinancials lets the pipeline also serve quarterly financials.
func WithFinancials(fin domrepo.FinancialSource) PipelineOption {
	return func(p *FetchPipeline) { p.fin = fin }
}

func WithPipelineLogger(log *logger.Logger) PipelineOption {
	return func(p *FetchPipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewFetchPipeline creates a new pipeline.
func NewFetchPipeline(provider string, bars domrepo.BarSource, metrics domrepo.Metrics, opts ...PipelineOption) *FetchPipeline {
	p := &FetchPipeline{
		provider:   provider,
		bars:       bars,
		metrics:    metrics,
		log:        logger.NewNop(),
		maxRetries: 2,
		backoffMin: 200 * time.Millisecond,
		backoffMax: 3 * time.Second,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadDailyBars fetches, validates and returns bars for symbol.
func (p *FetchPipeline) LoadDailyBars(ctx context.Context, symbol string, period domrepo.Period) (*models.Series, error) {
	start := time.Now()
	var series *models.Series
	err := p.do(ctx, "bars", symbol, func(ctx context.Context) error {
		s, err := p.bars.LoadDailyBars(ctx, symbol, period)
		if err != nil {
			return err
		}
		series = s
		return nil
	})
	p.metrics.RecordFetch(p.provider, err)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordLatency("fetch_bars", time.Since(start).Seconds())

	clean, dropped := validBars(series.Bars)
	if dropped > 0 {
		p.metrics.RecordError("pipeline_invalid_bar")
		p.log.Warn("dropped malformed bars", logger.String("symbol", symbol), logger.Int("dropped", dropped))
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	if dropped == 0 {
		return series, nil
	}
	return models.NewSeries(series.Symbol, clean), nil
}

// LoadQuarterlyFinancials forwards to the configured financial source with the
// same throttling and retry policy used for bars.
func (p *FetchPipeline) LoadQuarterlyFinancials(ctx context.Context, symbol string) (*models.QuarterlyFinancials, error) {
	if p.fin == nil {
		return nil, fmt.Errorf("financials for %s: %w", symbol, models.ErrNoData)
	}
	var qf *models.QuarterlyFinancials
	err := p.do(ctx, "financials", symbol, func(ctx context.Context) error {
		r, err := p.fin.LoadQuarterlyFinancials(ctx, symbol)
		if err != nil {
			return err
		}
		qf = r
		return nil
	})
	p.metrics.RecordFetch(p.provider+"_financials", err)
	return qf, err
}

func (p *FetchPipeline) do(ctx context.Context, op, symbol string, fn func(context.Context) error) error {
	backoff := p.backoffMin
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if p.limiter != nil {
			if werr := p.limiter.Wait(ctx, p.provider); werr != nil {
				return fmt.Errorf("rate limit wait: %w", werr)
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if errors.Is(err, models.ErrNoData) || !xhttp.IsRetryable(err) || attempt == p.maxRetries {
			break
		}
		p.metrics.RecordError("pipeline_retry")
		p.log.Debug("retrying fetch",
			logger.String("op", op),
			logger.String("symbol", symbol),
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff_ms", backoff),
			logger.Error(err),
		)
		if serr := p.sleep(ctx, backoff); serr != nil {
			return serr
		}
		backoff *= 2
		if backoff > p.backoffMax {
			backoff = p.backoffMax
		}
	}
	return err
}

func validBars(bars []models.Bar) ([]models.Bar, int) {
	out := bars[:0:0]
	for _, b := range bars {
		if validBar(b) {
			out = append(out, b)
		}
	}
	return out, len(bars) - len(out)
}

func validBar(b models.Bar) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if b.Close <= 0 || b.High < b.Low || b.Date.IsZero() {
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	_ domrepo.BarSource       = (*FetchPipeline)(nil)
	_ domrepo.FinancialSource = (*FetchPipeline)(nil)
)
