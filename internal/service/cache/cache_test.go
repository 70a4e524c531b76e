package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"SwingRank/internal/domain/models"
	drepo "SwingRank/internal/domain/repository"
	"SwingRank/internal/testutil"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.SetBytes(ctx, "k", []byte("v"), time.Minute)
	if b, ok, _ := c.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("expected hit")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestCachedBarSource(t *testing.T) {
	calls := 0
	src := drepo.BarSourceFunc(func(ctx context.Context, symbol string, p drepo.Period) (*models.Series, error) {
		calls++
		if symbol == "MISSING" {
			return nil, models.ErrNoData
		}
		return testutil.Trending(symbol, 30, 100, 1, 1e6), nil
	})
	cs := NewCachedBarSource(src, NewTTLCache(), time.Hour, nil)
	cs.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }

	if k := cs.Key("TCS", drepo.Period1Y); k != "bars:TCS:1y:2024-05-02" {
		t.Fatalf("key=%s", k)
	}

	ctx := context.Background()
	a, err := cs.LoadDailyBars(ctx, "TCS", drepo.Period1Y)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	a.SetChannel("ema_10", make([]float64, a.Len()))

	b, err := cs.LoadDailyBars(ctx, "TCS", drepo.Period1Y)
	if err != nil || calls != 1 {
		t.Fatalf("second load should hit the cache: calls=%d err=%v", calls, err)
	}
	if b.Len() != a.Len() || b.HasChannel("ema_10") {
		t.Fatalf("cached series must be a fresh copy without channels")
	}

	if _, err := cs.LoadDailyBars(ctx, "MISSING", drepo.Period1Y); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
