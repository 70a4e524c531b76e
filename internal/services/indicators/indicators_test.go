package indicators

import (
	"math"
	"testing"

	"SwingRank/internal/testutil"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEMASeededByFirstValue(t *testing.T) {
	got := EMA([]float64{10, 20, 30}, 3)
	// alpha = 0.5
	want := []float64{10, 15, 22.5}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("ema[%d]=%v want %v", i, got[i], want[i])
		}
	}
}

func TestAddEMAIsIdempotent(t *testing.T) {
	s := testutil.Trending("X", 30, 100, 1, 1e6)
	first := AddEMA(s, 10)
	first[0] = -1
	again := AddEMA(s, 10)
	if again[0] != -1 {
		t.Fatalf("expected cached channel to be returned")
	}
	if !s.HasChannel(EMA10) {
		t.Fatalf("missing channel %s", EMA10)
	}
}

func TestATRUndefinedBeforePeriod(t *testing.T) {
	s := testutil.Bars("X", [][4]float64{
		{10, 12, 9, 11},
		{11, 13, 10, 12},
		{12, 12, 8, 9},
		{9, 10, 9, 10},
	})
	atr := AddATR(s, 3)
	for i := 0; i < 2; i++ {
		if !math.IsNaN(atr[i]) {
			t.Fatalf("atr[%d] should be undefined, got %v", i, atr[i])
		}
	}
	// TR = 3, 3, 4, 1
	if !near(atr[2], 10.0/3) || !near(atr[3], 8.0/3) {
		t.Fatalf("unexpected atr %v", atr)
	}
}

func TestATRShortSeriesAllUndefined(t *testing.T) {
	s := testutil.FromCloses("X", []float64{1, 2, 3})
	for i, v := range AddATR(s, 14) {
		if !math.IsNaN(v) {
			t.Fatalf("atr[%d]=%v on short series", i, v)
		}
	}
}

func TestRSIAllGainsIs100(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Fatalf("rsi[%d] should be undefined", i)
		}
	}
	if rsi[29] != 100 {
		t.Fatalf("rsi with no losses = %v want 100", rsi[29])
	}
}

func TestRSIBounded(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7)
	}
	for i, v := range RSI(closes, 14) {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d]=%v out of range", i, v)
		}
	}
}

func TestRSIFlatIsUndefined(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	if v := RSI(closes, 3)[7]; !math.IsNaN(v) {
		t.Fatalf("flat rsi=%v want NaN", v)
	}
}

func TestADXFlatSeriesDoesNotPanic(t *testing.T) {
	s := testutil.FromCloses("X", make([]float64, 40))
	adx := AddADX(s, 14)
	if len(adx) != 40 {
		t.Fatalf("len=%d", len(adx))
	}
	if _, ok := Last(adx); ok {
		t.Fatalf("adx on zero range bars should be undefined")
	}
}

func TestADXRisingLowsUnderTrainingRule(t *testing.T) {
	s := testutil.Trending("X", 60, 100, 2, 1e6)
	if v, ok := Last(AddADX(s, 14)); !ok || !near(v, -100) {
		t.Fatalf("lows rising in step with highs should give adx -100, got %v ok=%v", v, ok)
	}
	if v, ok := Last(ADXWith(s, 14, DMStandard)); !ok || !near(v, 100) {
		t.Fatalf("standard rule on a steady uptrend = %v ok=%v", v, ok)
	}
}

func TestADXMatchesTrainingFormula(t *testing.T) {
	s := testutil.Bars("X", [][4]float64{
		{9, 10, 8, 9},
		{10, 11, 9.5, 10.5},
		{11, 13, 10.5, 12},
		{12.5, 13.5, 12, 13},
		{13, 15, 12.5, 14.5},
		{14.5, 15.5, 14, 15},
		{15, 17, 14.5, 16.5},
		{16.5, 17.5, 16, 17},
	})
	adx := ADX(s, 3)
	for i := 0; i < 4; i++ {
		if !math.IsNaN(adx[i]) {
			t.Fatalf("adx[%d] should be undefined, got %v", i, adx[i])
		}
	}
	want := map[int]float64{4: 150, 5: -550.0 / 3, 6: 250.0 / 3, 7: -100}
	for i, w := range want {
		if !near(adx[i], w) {
			t.Fatalf("adx[%d]=%v want %v", i, adx[i], w)
		}
	}
	for i, v := range ADXWith(s, 3, DMStandard)[4:] {
		if !near(v, 100) {
			t.Fatalf("standard adx[%d]=%v want 100", i+4, v)
		}
	}
}

func TestVolatilitySqueeze(t *testing.T) {
	closes := make([]float64, 60)
	closes[0] = 100
	for i := 1; i < 50; i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] * 1.03
		} else {
			closes[i] = closes[i-1] * 0.97
		}
	}
	for i := 50; i < 60; i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] * 1.001
		} else {
			closes[i] = closes[i-1] * 0.999
		}
	}
	if !VolatilitySqueeze(testutil.FromCloses("X", closes), 10, 50) {
		t.Fatalf("expected squeeze")
	}
	if VolatilitySqueeze(testutil.FromCloses("X", closes[:40]), 10, 50) {
		t.Fatalf("short series must not squeeze")
	}
}

func TestEMATrendStrength(t *testing.T) {
	if v := EMATrendStrength(testutil.Trending("X", 19, 100, 1, 1e6)); v != 0 {
		t.Fatalf("short series strength=%v", v)
	}
	if v := EMATrendStrength(testutil.Trending("X", 40, 100, 1, 1e6)); v <= 0 {
		t.Fatalf("uptrend strength=%v", v)
	}
}
