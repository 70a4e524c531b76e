// Package tradeplan derives targets, stops and hit probabilities from the last
// close, ATR and the model's win probability.
package tradeplan

import (
	"math"

	"SwingRank/internal/domain/models"
	"SwingRank/pkg/util"
)

type tier struct {
	maxPct  float64
	atrMult float64
}

var tiers = [3]tier{
	{maxPct: 0.05, atrMult: 1.2},
	{maxPct: 0.10, atrMult: 2.2},
	{maxPct: 0.15, atrMult: 3.5},
}

const (
	SLMult       = 1.0
	TrailingMult = 1.5
	PTP1Mult     = 1.3
	PTP1Max      = 0.95
	PTP3Mult     = 0.6
)

// Compute builds the plan for close c, ATR a and win probability p. Prices and
// probabilities are rounded to 2 decimals.
func Compute(c, a, p float64) models.TradePlan {
	atrPct := 0.0
	if c != 0 {
		atrPct = a / c
	}
	var tp [3]float64
	for i, t := range tiers {
		tp[i] = util.Round(c*(1+math.Min(t.maxPct, t.atrMult*atrPct)), 2)
	}
	return models.TradePlan{
		TP1:        tp[0],
		TP2:        tp[1],
		TP3:        tp[2],
		SL:         util.Round(c-SLMult*a, 2),
		TrailingSL: util.Round(c-TrailingMult*a, 2),
		PTP1:       util.Round(math.Min(PTP1Max, p*PTP1Mult), 2),
		PTP2:       util.Round(p, 2),
		PTP3:       util.Round(p*PTP3Mult, 2),
	}
}
