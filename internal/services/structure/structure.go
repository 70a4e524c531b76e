// Package structure derives structural signals from an indicator-augmented
// bar series. Every classifier looks at the last closed bar and maps
// degenerate input (short history, zero ranges, zero denominators) to a safe
// default instead of failing.
package structure

import (
	"math"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/services/indicators"
)

// Defaults used by the evaluation pipeline.
const (
	UptrendMinBars         = 20
	BullishLookback        = 3
	ConsolidationLookback  = 10
	ConsolidationThreshold = 0.03
	VolumeLookback         = 5
	VolumeThreshold        = 1.2
	ResistanceLookback     = 50
	NearResistanceBand     = 0.03
	RejectionLookback      = 3
	WickRatioThreshold     = 0.4
	SmallBodyRatio         = 0.25
	StrongTrendADX         = 25
)

func lastBars(s *models.Series, n int) []models.Bar {
	if n > s.Len() {
		n = s.Len()
	}
	if n <= 0 {
		return nil
	}
	return s.Bars[s.Len()-n:]
}

// IsUptrend is ema_10 > ema_15 and close > ema_15 on the last bar, with at
// least 20 bars of history.
func IsUptrend(s *models.Series) bool {
	if s.Len() < UptrendMinBars {
		return false
	}
	e10, ok1 := indicators.Last(indicators.AddEMA(s, 10))
	e15, ok2 := indicators.Last(indicators.AddEMA(s, 15))
	if !ok1 || !ok2 {
		return false
	}
	return e10 > e15 && s.Last().Close > e15
}

// HasBullishCandles reports whether a strict majority of the last lookback
// bars closed above their open.
func HasBullishCandles(s *models.Series, lookback int) bool {
	count := 0
	for _, b := range lastBars(s, lookback) {
		if b.Close > b.Open {
			count++
		}
	}
	return count >= lookback/2+1
}

// IsConsolidating reports whether the high-low range of the last lookback
// bars is within threshold of the lowest low.
func IsConsolidating(s *models.Series, lookback int, threshold float64) bool {
	bars := lastBars(s, lookback)
	if len(bars) == 0 {
		return false
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, b := range bars {
		hi = math.Max(hi, b.High)
		lo = math.Min(lo, b.Low)
	}
	if lo == 0 {
		return false
	}
	return (hi-lo)/lo <= threshold
}

// VolumeSupportsBreakout compares the mean volume of the last lookback bars
// with the lookback bars before them. It returns a 0/1 flag because the flag
// feeds the model's feature vector directly.
func VolumeSupportsBreakout(s *models.Series, lookback int, threshold float64) int {
	if s.Len() < 2*lookback {
		return 0
	}
	bars := lastBars(s, 2*lookback)
	var past, recent float64
	for i, b := range bars {
		if i < lookback {
			past += b.Volume
		} else {
			recent += b.Volume
		}
	}
	if past == 0 {
		return 0
	}
	if recent/past >= threshold {
		return 1
	}
	return 0
}

// ComputeResistance is the max high over the trailing lookback bars, nil when
// the series is shorter than lookback.
func ComputeResistance(s *models.Series, lookback int) *float64 {
	if s.Len() < lookback {
		return nil
	}
	hi := math.Inf(-1)
	for _, b := range lastBars(s, lookback) {
		hi = math.Max(hi, b.High)
	}
	return &hi
}

// IsNearResistance reports whether the last close is within threshold of
// resistance. A nil or zero resistance is never near.
func IsNearResistance(s *models.Series, resistance *float64, threshold float64) bool {
	if resistance == nil || *resistance == 0 || s.Empty() {
		return false
	}
	r := *resistance
	return math.Abs(r-s.Last().Close)/r <= threshold
}

// HasRejection counts rejection candles among the last lookback bars: a long
// upper wick relative to the range together with a bearish or small body.
// Zero-range bars are skipped. Two or more rejections return true.
func HasRejection(s *models.Series, lookback int, wickRatio float64) bool {
	count := 0
	for _, b := range lastBars(s, lookback) {
		rng := b.High - b.Low
		if rng == 0 {
			continue
		}
		upper := b.High - math.Max(b.Open, b.Close)
		bearishOrSmall := b.Close <= b.Open || math.Abs(b.Close-b.Open)/rng < SmallBodyRatio
		if upper/rng >= wickRatio && bearishOrSmall {
			count++
		}
	}
	return count >= 2
}

// IsStrongTrend is ADX(14) above 25 on the last bar. Undefined ADX is not strong.
func IsStrongTrend(s *models.Series) bool {
	v, ok := indicators.Last(indicators.AddADX(s, 14))
	return ok && v > StrongTrendADX
}

// Classify computes the full signal set except relative strength, which needs
// the benchmark and is filled in by the caller.
func Classify(s *models.Series) models.SignalSet {
	indicators.Prepare(s)

	res := ComputeResistance(s, ResistanceLookback)
	sig := models.SignalSet{
		Uptrend:           IsUptrend(s),
		BullishCandles:    HasBullishCandles(s, BullishLookback),
		Consolidation:     IsConsolidating(s, ConsolidationLookback, ConsolidationThreshold),
		VolumeSupport:     VolumeSupportsBreakout(s, VolumeLookback, VolumeThreshold),
		Resistance:        res,
		NearResistance:    IsNearResistance(s, res, NearResistanceBand),
		Rejection:         HasRejection(s, RejectionLookback, WickRatioThreshold),
		StrongTrend:       IsStrongTrend(s),
		WeeklyTrend:       WeeklyTrend(s),
		VolatilitySqueeze: indicators.VolatilitySqueeze(s, 10, 50),
		EMATrendStrength:  indicators.EMATrendStrength(s),
	}
	if v, ok := indicators.Last(indicators.AddRSI(s, 14)); ok {
		sig.RSI = &v
	}
	if v, ok := indicators.Last(indicators.AddADX(s, 14)); ok {
		sig.ADX = &v
	}
	if v, ok := indicators.Last(indicators.AddATR(s, 14)); ok {
		sig.ATR = v
	}
	return sig
}
