package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds x half away from zero to the given decimal places using
// decimal arithmetic, so 102.45 stays 102.45 rather than drifting on binary
// representation. NaN and Inf are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
