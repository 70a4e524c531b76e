package usecase

import (
	"context"
	"errors"
	"testing"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/testutil"
	"SwingRank/pkg/metrics"
)

type barStoreStub struct {
	barsStub
	stored map[string]int
	err    error
}

func (s *barStoreStub) Init(context.Context) error { return nil }
func (s *barStoreStub) Close() error               { return nil }

func (s *barStoreStub) StoreBars(_ context.Context, symbol string, bars []models.Bar) error {
	if s.err != nil {
		return s.err
	}
	s.stored[symbol] += len(bars)
	return nil
}

func TestBarSyncContinuesPastFailures(t *testing.T) {
	src := barsStub{
		series: map[string]*models.Series{
			"A": testutil.Trending("A", 30, 100, 1, 1e6),
			"B": testutil.Trending("B", 20, 100, 1, 1e6),
		},
		errs: map[string]error{"BAD": errors.New("503")},
	}
	store := &barStoreStub{stored: map[string]int{}}
	uc := NewBarSyncUseCase(src, store, metrics.Nop{}, nil)

	rep, err := uc.Sync(context.Background(), []string{"A", "BAD", "B", "MISSING"}, "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Symbols != 4 || rep.Stored != 2 || rep.Bars != 50 || len(rep.Failed) != 2 {
		t.Fatalf("report=%+v", rep)
	}
	if store.stored["A"] != 30 || store.stored["B"] != 20 {
		t.Fatalf("stored=%v", store.stored)
	}
}

func TestBarSyncStopsOnCancel(t *testing.T) {
	store := &barStoreStub{stored: map[string]int{}}
	uc := NewBarSyncUseCase(barsStub{}, store, metrics.Nop{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uc.Sync(ctx, []string{"A"}, "1y"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBarSyncStoreError(t *testing.T) {
	src := barsStub{series: map[string]*models.Series{"A": testutil.Trending("A", 5, 100, 1, 1e6)}}
	store := &barStoreStub{stored: map[string]int{}, err: errors.New("disk full")}
	rep, err := NewBarSyncUseCase(src, store, metrics.Nop{}, nil).Sync(context.Background(), []string{"A"}, "1y")
	if err != nil || rep.Stored != 0 || rep.Failed["A"] == "" {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
}
