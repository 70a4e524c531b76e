package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	symbols     *prometheus.CounterVec
	runs        *prometheus.CounterVec
	candidates  prometheus.Gauge
	runDuration prometheus.Histogram
	fetches     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		symbols: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingrank_symbols_evaluated_total",
				Help: "Symbols evaluated per outcome (ranked or skip reason)",
			},
			[]string{"outcome"},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingrank_runs_total",
				Help: "Completed ranking runs by market regime",
			},
			[]string{"regime"},
		),
		candidates: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "swingrank_last_run_candidates",
				Help: "Ranked candidates in the last run",
			},
		),
		runDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swingrank_run_duration_seconds",
				Help:    "Wall time of a ranking run",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingrank_fetches_total",
				Help: "Market data fetches by provider and result",
			},
			[]string{"provider", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingrank_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swingrank_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSymbol counts one evaluated symbol by outcome.
func (r *Recorder) RecordSymbol(outcome string) {
	r.symbols.WithLabelValues(outcome).Inc()
}

// RecordRun records a finished ranking run.
func (r *Recorder) RecordRun(regime string, candidates int, d time.Duration) {
	r.runs.WithLabelValues(regime).Inc()
	r.candidates.Set(float64(candidates))
	r.runDuration.Observe(d.Seconds())
}

// RecordFetch records one provider fetch.
func (r *Recorder) RecordFetch(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetches.WithLabelValues(provider, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordSymbol(string)                  {}
func (Nop) RecordRun(string, int, time.Duration) {}
func (Nop) RecordFetch(string, error)            {}
func (Nop) RecordError(string)                   {}
func (Nop) RecordLatency(string, float64)        {}
