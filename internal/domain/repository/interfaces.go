package repository

import (
	"context"
	"time"

	"SwingRank/internal/domain/models"
)

// RankingSink receives every finished ranking run.
type RankingSink interface {
	Name() string
	Publish(ctx context.Context, run *models.RankingRun) error
}

// RankingStore persists runs and reads back the latest one.
type RankingStore interface {
	RankingSink
	Init(ctx context.Context) error
	Latest(ctx context.Context) (*models.RankingRun, error)
	Health(ctx context.Context) error
	Close() error
}

// BarStore is a BarSource backed by a database that can also ingest bars.
type BarStore interface {
	BarSource
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, symbol string, bars []models.Bar) error
	Close() error
}

type Metrics interface {
	RecordSymbol(outcome string)
	RecordRun(regime string, candidates int, d time.Duration)
	RecordFetch(provider string, err error)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
