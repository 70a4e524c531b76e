// Package testutil builds deterministic bar series for tests.
package testutil

import (
	"time"

	"SwingRank/internal/domain/models"
)

// Start is the first trading day of generated series (a Monday).
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TradingDays returns n weekdays starting at Start.
func TradingDays(n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := Start
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// FromCloses builds a series where every bar opens, peaks and bottoms at its close.
func FromCloses(symbol string, closes []float64) *models.Series {
	days := TradingDays(len(closes))
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{Date: days[i], Open: c, High: c, Low: c, Close: c, Volume: 1_000_000}
	}
	return models.NewSeries(symbol, bars)
}

// Trending builds n bullish bars whose close rises by step each day.
func Trending(symbol string, n int, start, step, volume float64) *models.Series {
	days := TradingDays(n)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := start + float64(i)*step
		o := c - step/2
		bars[i] = models.Bar{Date: days[i], Open: o, High: c + step/4, Low: o - step/4, Close: c, Volume: volume}
	}
	return models.NewSeries(symbol, bars)
}

// Bars builds a series from explicit OHLC tuples.
func Bars(symbol string, ohlc [][4]float64) *models.Series {
	days := TradingDays(len(ohlc))
	bars := make([]models.Bar, len(ohlc))
	for i, v := range ohlc {
		bars[i] = models.Bar{Date: days[i], Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: 1_000_000}
	}
	return models.NewSeries(symbol, bars)
}

// Floats returns a pointer to v.
func Floats(v float64) *float64 { return &v }

// Zigzag builds a bullish-candle uptrend that rises 2 and falls 1 on
// alternate days, so RSI stays in the mid 60s and ATR(14) settles at 1.75.
func Zigzag(symbol string, n int, base float64) *models.Series {
	days := TradingDays(n)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := base + 0.5*float64(i)
		if i%2 == 1 {
			c += 1.5
		}
		bars[i] = models.Bar{Date: days[i], Open: c - 0.3, High: c + 0.1, Low: c - 0.4, Close: c, Volume: 1_000_000}
	}
	return models.NewSeries(symbol, bars)
}
