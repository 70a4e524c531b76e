package usecase

import (
	"context"
	"errors"
	"testing"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/internal/testutil"
)

func TestSimulateZigzagWins(t *testing.T) {
	res, err := Simulate(testutil.Zigzag("ZIG", 150, 100), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trades) != 25 || res.Wins != 25 || res.Losses != 0 {
		t.Fatalf("trades=%d wins=%d losses=%d", len(res.Trades), res.Wins, res.Losses)
	}
	if res.WinRate != 1 || res.AvgReturn <= 0 {
		t.Fatalf("win_rate=%v avg_return=%v", res.WinRate, res.AvgReturn)
	}
	for _, tr := range res.Trades {
		if !tr.Win || !tr.ExitDate.After(tr.EntryDate) {
			t.Fatalf("unexpected trade %+v", tr)
		}
	}
}

func TestSimulateStopLoss(t *testing.T) {
	s := testutil.Zigzag("GAP", 80, 100)
	// Gap down four points below the prior close while the bar-58 trade is open.
	prev := s.Bars[59].Close
	s.Bars[60].Close = prev - 4
	s.Bars[60].Open = prev - 3.7
	s.Bars[60].High = prev
	s.Bars[60].Low = prev - 4.4

	res, err := Simulate(models.NewSeries("GAP", s.Bars), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Losses != 1 {
		t.Fatalf("expected one stop-out, got %+v", res)
	}
	for _, tr := range res.Trades {
		if !tr.Win && tr.Return >= 0 {
			t.Fatalf("losing trade with non-negative return %+v", tr)
		}
	}
	if res.WinRate >= 1 {
		t.Fatalf("win_rate=%v", res.WinRate)
	}
}

func TestSimulateNotEnoughHistory(t *testing.T) {
	_, err := Simulate(testutil.Zigzag("ZIG", 120, 100), 100)
	if !errors.Is(err, ErrNotEnoughHistory) {
		t.Fatalf("expected ErrNotEnoughHistory, got %v", err)
	}
	if _, err := Simulate(testutil.Zigzag("ZIG", 120, 100), 0); !errors.Is(err, ErrNotEnoughHistory) {
		t.Fatalf("days=0 should be rejected, got %v", err)
	}
}

func TestBacktesterLoadsBars(t *testing.T) {
	b := NewBacktester(barsStub{series: map[string]*models.Series{"ZIG": testutil.Zigzag("ZIG", 150, 100)}})
	res, err := b.Backtest(context.Background(), "ZIG", 100)
	if err != nil || res.Symbol != "ZIG" || res.Days != 100 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if _, err := b.Backtest(context.Background(), "NONE", 100); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestPeriodFor(t *testing.T) {
	cases := map[int]domrepo.Period{
		60:  domrepo.Period6M,
		120: domrepo.Period6M,
		121: domrepo.Period1Y,
		245: domrepo.Period1Y,
		400: domrepo.Period2Y,
		600: domrepo.Period5Y,
	}
	for n, want := range cases {
		if got := periodFor(n); got != want {
			t.Fatalf("periodFor(%d)=%s, want %s", n, got, want)
		}
	}
}
