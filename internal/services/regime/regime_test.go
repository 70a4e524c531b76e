package regime

import (
	"context"
	"errors"
	"testing"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/domain/repository"
	"SwingRank/internal/testutil"
)

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestFromSeries(t *testing.T) {
	if r := FromSeries(testutil.FromCloses("NIFTY", linear(60, 100, 1))); r.Status != models.RegimeBullish {
		t.Fatalf("rising benchmark status=%s", r.Status)
	}
	if r := FromSeries(testutil.FromCloses("NIFTY", linear(60, 200, -1))); r.Status != models.RegimeBearish {
		t.Fatalf("falling benchmark status=%s", r.Status)
	}
	r := FromSeries(testutil.FromCloses("NIFTY", linear(49, 100, 1)))
	if r.Status != models.RegimeNeutral || r.Blocks() {
		t.Fatalf("short benchmark should be neutral and non-blocking, got %s", r.Status)
	}
}

func TestDetectorDegradesToNeutral(t *testing.T) {
	src := repository.BarSourceFunc(func(ctx context.Context, symbol string, p repository.Period) (*models.Series, error) {
		return nil, errors.New("boom")
	})
	r := NewDetector(src, "^NSEI", repository.Period1Y, nil).Snapshot(context.Background())
	if r.Status != models.RegimeNeutral {
		t.Fatalf("status=%s want NEUTRAL", r.Status)
	}
}

func TestRelativeStrength(t *testing.T) {
	bench := testutil.FromCloses("B", linear(60, 100, 0))
	stock := testutil.FromCloses("S", linear(60, 100, 0))
	// Stock doubles over the window, benchmark is flat.
	stock.Bars[59].Close = 200
	if got := RelativeStrength(stock, bench, 50); got != 2 {
		t.Fatalf("rs=%v want 2", got)
	}
}

func TestRelativeStrengthAlignsByDate(t *testing.T) {
	bench := testutil.FromCloses("B", linear(60, 100, 0))
	// Stock dates all fall after the last benchmark bar.
	stock := testutil.FromCloses("S", linear(40, 100, 1))
	for i := range stock.Bars {
		stock.Bars[i].Date = stock.Bars[i].Date.AddDate(0, 0, 7*12)
	}
	if got := RelativeStrength(stock, bench, 50); got != 0 {
		t.Fatalf("rs with short overlap=%v want 0", got)
	}
}

func TestRelativeStrengthRounded(t *testing.T) {
	bench := testutil.FromCloses("B", linear(50, 100, 0))
	bench.Bars[49].Close = 103
	stock := testutil.FromCloses("S", linear(50, 100, 0))
	stock.Bars[49].Close = 110
	// (110/100)/(103/100) = 1.067961...
	if got := RelativeStrength(stock, bench, 50); got != 1.068 {
		t.Fatalf("rs=%v want 1.068", got)
	}
}
