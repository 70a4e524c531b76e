package structure

import (
	"math"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/services/indicators"
	"SwingRank/pkg/util"
)

// WeeklyMinBars is the number of weekly bars beyond which the weekly trend is
// actually evaluated.
const WeeklyMinBars = 20

// Resample groups daily bars into Monday-to-Sunday calendar weeks. Each
// weekly bar is dated at its week start. Weeks without trading are absent;
// WeeklyCloses restores them as gaps.
func Resample(s *models.Series) []models.Bar {
	var out []models.Bar
	for _, b := range s.Bars {
		ws := util.WeekStart(b.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(ws) {
			w := &out[n-1]
			w.High = math.Max(w.High, b.High)
			w.Low = math.Min(w.Low, b.Low)
			w.Close = b.Close
			w.Volume += b.Volume
			continue
		}
		out = append(out, models.Bar{Date: ws, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume})
	}
	return out
}

// WeeklyCloses returns one close per calendar week from the first traded week
// to the last. Weeks without trading are NaN and still count as weeks.
func WeeklyCloses(s *models.Series) []float64 {
	weeks := Resample(s)
	if len(weeks) == 0 {
		return nil
	}
	first := weeks[0].Date
	span := int(weeks[len(weeks)-1].Date.Sub(first).Hours()/(24*7)+0.5) + 1
	out := make([]float64, span)
	for i := range out {
		out[i] = math.NaN()
	}
	for _, w := range weeks {
		out[int(w.Date.Sub(first).Hours()/(24*7)+0.5)] = w.Close
	}
	return out
}

// WeeklyTrend reports whether the last weekly close is above the weekly
// 20-period EMA.
//
// With 20 or fewer calendar weeks the result is true. This is a permissive
// default: short histories never lose the weekly point, so a young listing is
// scored as if its weekly trend were intact.
func WeeklyTrend(s *models.Series) bool {
	closes := WeeklyCloses(s)
	if len(closes) <= WeeklyMinBars {
		return true
	}
	ema, ok := indicators.Last(gapEMA(closes, 20))
	if !ok {
		return true
	}
	return closes[len(closes)-1] > ema
}

// gapEMA is a recursive EMA whose memory keeps decaying across NaN gaps: an
// observation after k missing weeks weighs the old mean by (1-alpha)^(k+1)
// against alpha, renormalized.
func gapEMA(values []float64, span int) []float64 {
	alpha := 2 / (float64(span) + 1)
	out := make([]float64, len(values))
	mean := math.NaN()
	oldWt := 1.0
	for i, v := range values {
		switch {
		case math.IsNaN(mean):
			mean = v
		default:
			oldWt *= 1 - alpha
			if !math.IsNaN(v) {
				if v != mean {
					mean = (oldWt*mean + alpha*v) / (oldWt + alpha)
				}
				oldWt = 1
			}
		}
		out[i] = mean
	}
	return out
}
