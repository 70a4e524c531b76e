package usecase

import (
	"context"
	"errors"
	"testing"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/internal/repository"
	"SwingRank/pkg/metrics"
)

func TestDailyRunDispatchesToEverySink(t *testing.T) {
	ev := evalStub{evals: map[string]*models.Evaluation{"A": candidate("A", 6, 0.6, 0.6)}}
	ranker := newRanker(barsStub{series: seriesFor("A")}, models.RegimeBullish, ev)
	store := repository.NewMemoryRankingStore()
	failing := &sinkStub{name: "broken", err: errors.New("unreachable")}
	ok := &sinkStub{name: "ok"}

	uc := NewDailyRunUseCase(ranker, StaticUniverse([]string{"A"}), store, []domrepo.RankingSink{failing, ok}, metrics.Nop{}, nil)
	run, err := uc.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("sink failures must not fail the run: %v", err)
	}
	if len(failing.runs) != 1 || len(ok.runs) != 1 || ok.runs[0] != run {
		t.Fatalf("every sink should receive the run")
	}
	latest, err := uc.Latest(context.Background())
	if err != nil || latest.ID != run.ID {
		t.Fatalf("latest=%v err=%v", latest, err)
	}
}

func TestDailyRunUniverseError(t *testing.T) {
	ranker := newRanker(barsStub{}, models.RegimeBullish, evalStub{})
	uc := NewDailyRunUseCase(ranker, func() ([]string, error) { return nil, errors.New("missing file") }, nil, nil, metrics.Nop{}, nil)
	if _, err := uc.Run(context.Background(), 5); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDailyRunRejectsConcurrentRun(t *testing.T) {
	ranker := newRanker(barsStub{}, models.RegimeBullish, evalStub{})
	uc := NewDailyRunUseCase(ranker, StaticUniverse(nil), nil, nil, metrics.Nop{}, nil)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, err := uc.Run(context.Background(), 5); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestDailyRunCancelledPublishesNothing(t *testing.T) {
	ev := evalStub{evals: map[string]*models.Evaluation{"A": candidate("A", 6, 0.6, 0.6)}}
	bars := ctxBars{barsStub{series: seriesFor("A", "B")}}
	ranker := NewRankingUseCase(bars, regimeStub(models.RegimeBullish), ev, metrics.Nop{}, nil, WithMinHistory(5))
	store := repository.NewMemoryRankingStore()
	sink := &sinkStub{name: "kafka"}

	uc := NewDailyRunUseCase(ranker, StaticUniverse([]string{"A", "B"}), store, []domrepo.RankingSink{sink}, metrics.Nop{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run, err := uc.Run(ctx, 5)
	if !errors.Is(err, context.Canceled) || run != nil {
		t.Fatalf("expected context.Canceled and no run, got run=%v err=%v", run, err)
	}
	if len(sink.runs) != 0 {
		t.Fatalf("a cancelled run must not reach sinks, got %d", len(sink.runs))
	}
	if _, err := uc.Latest(context.Background()); !errors.Is(err, repository.ErrNoRun) {
		t.Fatalf("latest should stay empty, got %v", err)
	}
}
