// Package indicators computes technical indicators over a bar series and
// caches each result as a named channel on the series.
package indicators

import (
	"fmt"
	"math"

	"SwingRank/internal/domain/models"
)

// Channel names used across the pipeline.
const (
	EMA10     = "ema_10"
	EMA15     = "ema_15"
	ATR14     = "atr_14"
	RSI14     = "rsi_14"
	ADX14     = "adx_14"
	LogReturn = "log_ret"
)

func cached(s *models.Series, name string, compute func() []float64) []float64 {
	if v, ok := s.Channel(name); ok {
		return v
	}
	v := compute()
	s.SetChannel(name, v)
	return v
}

// AddEMA adds ema_<span> over close. Adding an existing channel is a no-op.
func AddEMA(s *models.Series, span int) []float64 {
	return cached(s, fmt.Sprintf("ema_%d", span), func() []float64 {
		return EMA(s.Closes(), span)
	})
}

// AddATR adds atr_<period>.
func AddATR(s *models.Series, period int) []float64 {
	return cached(s, fmt.Sprintf("atr_%d", period), func() []float64 {
		return RollingMean(TrueRange(s), period)
	})
}

// AddRSI adds rsi_<period> using Wilder smoothing.
func AddRSI(s *models.Series, period int) []float64 {
	return cached(s, fmt.Sprintf("rsi_%d", period), func() []float64 {
		return RSI(s.Closes(), period)
	})
}

// AddADX adds adx_<period>.
func AddADX(s *models.Series, period int) []float64 {
	return cached(s, fmt.Sprintf("adx_%d", period), func() []float64 {
		return ADX(s, period)
	})
}

// AddLogReturns adds log_ret, NaN at index 0 and wherever a close is not positive.
func AddLogReturns(s *models.Series) []float64 {
	return cached(s, LogReturn, func() []float64 {
		return LogReturns(s.Closes())
	})
}

// Prepare computes the channel set every evaluation reads.
func Prepare(s *models.Series) {
	AddEMA(s, 10)
	AddEMA(s, 15)
	AddATR(s, 14)
	AddRSI(s, 14)
	AddADX(s, 14)
	AddLogReturns(s)
}

// EMA is the exponential moving average with alpha = 2/(span+1), seeded by
// the first value.
func EMA(values []float64, span int) []float64 {
	return ewm(values, 2/(float64(span)+1), 1)
}

// ewm is a recursive (non bias-corrected) exponential mean. Leading NaNs are
// skipped; the first finite value seeds the mean. Outputs stay NaN until
// minPeriods observations have been seen.
func ewm(values []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(values))
	mean := math.NaN()
	seen := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			if seen == 0 {
				mean = v
			} else {
				mean = alpha*v + (1-alpha)*mean
			}
			seen++
		}
		if seen >= minPeriods {
			out[i] = mean
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|); the first
// bar has no previous close and uses high-low.
func TrueRange(s *models.Series) []float64 {
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		tr := b.High - b.Low
		if i > 0 {
			pc := s.Bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-pc), math.Abs(b.Low-pc)))
		}
		out[i] = tr
	}
	return out
}

// RollingSum is NaN until window values exist and wherever the window holds a NaN.
func RollingSum(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.NaN()
		if window <= 0 || i < window-1 {
			continue
		}
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum
	}
	return out
}

// RollingMean is RollingSum divided by window.
func RollingMean(values []float64, window int) []float64 {
	out := RollingSum(values, window)
	for i := range out {
		out[i] /= float64(window)
	}
	return out
}

// RSI is 100 - 100/(1+meanGain/meanLoss) with Wilder smoothing
// (alpha = 1/period). The first period values are NaN. meanLoss = 0 gives 100;
// a flat window (both means zero) is NaN.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	if n > 0 {
		gains[0], losses[0] = math.NaN(), math.NaN()
	}
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}
	alpha := 1 / float64(period)
	up := ewm(gains, alpha, period)
	down := ewm(losses, alpha, period)

	out := make([]float64, n)
	for i := range out {
		switch {
		case math.IsNaN(up[i]) || math.IsNaN(down[i]):
			out[i] = math.NaN()
		case down[i] == 0 && up[i] == 0:
			out[i] = math.NaN()
		case down[i] == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+up[i]/down[i])
		}
	}
	return out
}

// DMRule selects how directional movement is measured for ADX.
type DMRule int

const (
	// DMTraining is the rule the probability model was fitted with: -DM is
	// the signed change in low (low - prevLow), kept when it beats the
	// already filtered +DM and is positive, and stored negated. Rising lows
	// therefore pull DX negative.
	DMTraining DMRule = iota
	// DMStandard is Wilder's rule: -DM is the fall in low (prevLow - low).
	DMStandard
)

// ADX is ADXWith under DMTraining.
func ADX(s *models.Series, period int) []float64 {
	return ADXWith(s, period, DMTraining)
}

// ADXWith is the rolling mean of DX over period, with DX built from rolling
// sums of true range and directional movement. DX is NaN where +DI + -DI = 0.
func ADXWith(s *models.Series, period int, rule DMRule) []float64 {
	n := s.Len()
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := s.Bars[i].High - s.Bars[i-1].High
		switch rule {
		case DMStandard:
			down := s.Bars[i-1].Low - s.Bars[i].Low
			if up > down && up > 0 {
				plusDM[i] = up
			}
			if down > up && down > 0 {
				minusDM[i] = down
			}
		default:
			down := s.Bars[i].Low - s.Bars[i-1].Low
			if up > down && up > 0 {
				plusDM[i] = up
			}
			if down > plusDM[i] && down > 0 {
				minusDM[i] = -down
			}
		}
	}

	tr := RollingSum(TrueRange(s), period)
	pdm := RollingSum(plusDM, period)
	mdm := RollingSum(minusDM, period)

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = math.NaN()
		if math.IsNaN(tr[i]) || tr[i] == 0 {
			continue
		}
		plusDI := 100 * pdm[i] / tr[i]
		minusDI := 100 * mdm[i] / tr[i]
		if sum := plusDI + minusDI; sum != 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}
	return RollingMean(dx, period)
}

// LogReturns returns ln(c[i]/c[i-1]), NaN where undefined.
func LogReturns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i == 0 || closes[i-1] <= 0 || closes[i] <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// SampleStd is the ddof=1 standard deviation of the finite values. NaN with
// fewer than two of them.
func SampleStd(values []float64) float64 {
	var sum, sum2 float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		sum2 += v * v
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	mean := sum / float64(n)
	variance := (sum2 - float64(n)*mean*mean) / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func tail(values []float64, n int) []float64 {
	if n > len(values) {
		n = len(values)
	}
	return values[len(values)-n:]
}

// VolatilitySqueeze reports whether the log-return std over the last lookback
// bars is below half of that over the last avgLookback bars. Series shorter
// than avgLookback never squeeze.
func VolatilitySqueeze(s *models.Series, lookback, avgLookback int) bool {
	if s.Len() < avgLookback {
		return false
	}
	lr := AddLogReturns(s)
	recent := SampleStd(tail(lr, lookback))
	hist := SampleStd(tail(lr, avgLookback))
	if math.IsNaN(recent) || math.IsNaN(hist) {
		return false
	}
	return recent < hist*0.5
}

// EMATrendStrength is (ema_10 - ema_15)/ema_15 at the last bar, 0 for series
// shorter than 20 bars.
func EMATrendStrength(s *models.Series) float64 {
	if s.Len() < 20 {
		return 0
	}
	e10 := AddEMA(s, 10)
	e15 := AddEMA(s, 15)
	last := e15[len(e15)-1]
	if last == 0 || math.IsNaN(last) {
		return 0
	}
	return (e10[len(e10)-1] - last) / last
}

// Last returns the final value of a channel and whether it is defined.
func Last(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v := values[len(values)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
