package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSymbol("ranked")
	r.RecordSymbol("ranked")
	r.RecordSymbol("illiquid")
	r.RecordRun("BULLISH", 3, 2*time.Second)
	r.RecordFetch("finnhub", nil)
	r.RecordFetch("finnhub", errors.New("x"))

	if got := testutil.ToFloat64(r.symbols.WithLabelValues("ranked")); got != 2 {
		t.Fatalf("ranked=%v want 2", got)
	}
	if got := testutil.ToFloat64(r.candidates); got != 3 {
		t.Fatalf("candidates=%v want 3", got)
	}
	if got := testutil.ToFloat64(r.fetches.WithLabelValues("finnhub", "error")); got != 1 {
		t.Fatalf("fetch errors=%v want 1", got)
	}
}
