package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SwingRank/internal/domain/models"
	drepo "SwingRank/internal/domain/repository"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/util"
)

// CachedBarSource memoizes daily bars per (symbol, period, as-of day). A hit
// always builds a fresh series, so cached bars are never shared between
// evaluations and their channels stay private.
type CachedBarSource struct {
	next  drepo.BarSource
	cache BytesCache
	ttl   time.Duration
	now   func() time.Time
	log   *logger.Logger
}

func NewCachedBarSource(next drepo.BarSource, c BytesCache, ttl time.Duration, log *logger.Logger) *CachedBarSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedBarSource{next: next, cache: c, ttl: ttl, now: time.Now, log: log}
}

// Key returns the cache key for symbol and period on the current day.
func (s *CachedBarSource) Key(symbol string, period drepo.Period) string {
	return fmt.Sprintf("bars:%s:%s:%s", symbol, period, util.FormatDay(s.now()))
}

func (s *CachedBarSource) LoadDailyBars(ctx context.Context, symbol string, period drepo.Period) (*models.Series, error) {
	key := s.Key(symbol, period)
	if b, ok, err := s.cache.GetBytes(ctx, key); err != nil {
		s.log.Warn("bar cache read failed", logger.String("key", key), logger.Error(err))
	} else if ok {
		var bars []models.Bar
		if err := json.Unmarshal(b, &bars); err == nil {
			return models.NewSeries(symbol, bars), nil
		}
	}

	series, err := s.next.LoadDailyBars(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(series.Bars); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.log.Warn("bar cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return series, nil
}

var _ drepo.BarSource = (*CachedBarSource)(nil)
