// Package scoring turns structural signals into the bounded rule score and
// the model feature vector.
package scoring

import (
	"fmt"
	"math"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/domain/service"
)

const (
	// MaxRuleScore bounds the rule score. The weights below sum to exactly
	// this value, so the cap never clips a real score.
	MaxRuleScore = 10
	// RSOutperform is the relative strength above which a symbol earns a point.
	RSOutperform = 1.05
)

type weight struct {
	points int
	on     func(models.SignalSet) bool
}

var weights = []weight{
	{2, func(s models.SignalSet) bool { return s.Uptrend }},
	{1, func(s models.SignalSet) bool { return s.BullishCandles }},
	{1, func(s models.SignalSet) bool { return s.Consolidation }},
	{1, func(s models.SignalSet) bool { return s.VolumeSupport == 1 }},
	{1, func(s models.SignalSet) bool { return s.NearResistance }},
	{1, func(s models.SignalSet) bool { return s.StrongTrend }},
	{1, func(s models.SignalSet) bool { return s.WeeklyTrend }},
	{1, func(s models.SignalSet) bool { return s.VolatilitySqueeze }},
	{1, func(s models.SignalSet) bool { return s.RelativeStrength > RSOutperform }},
}

// RuleScore sums the weights of every active signal, capped at MaxRuleScore.
func RuleScore(s models.SignalSet) int {
	score := 0
	for _, w := range weights {
		if w.on(s) {
			score += w.points
		}
	}
	if score > MaxRuleScore {
		score = MaxRuleScore
	}
	return score
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Features builds the model input in its fixed training order.
func Features(s models.SignalSet, ruleScore int, financialScore float64) models.FeatureVector {
	return models.FeatureVector{
		float64(ruleScore) / MaxRuleScore,
		s.EMATrendStrength,
		flag(s.BullishCandles),
		flag(s.Consolidation),
		float64(s.VolumeSupport),
		flag(s.NearResistance),
		financialScore,
		0.0,
	}
}

// VectorFrom converts a raw slice into a feature vector. Any length other
// than models.FeatureVectorLen, or a non-finite value, breaks the model
// contract.
func VectorFrom(values []float64) (models.FeatureVector, error) {
	var v models.FeatureVector
	if len(values) != models.FeatureVectorLen {
		return v, fmt.Errorf("%w: got %d features, want %d", service.ErrFeatureContract, len(values), models.FeatureVectorLen)
	}
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, fmt.Errorf("%w: feature %d is %v", service.ErrFeatureContract, i, x)
		}
		v[i] = x
	}
	return v, nil
}

// CheckVector rejects non-finite values in an already-built vector.
func CheckVector(v models.FeatureVector) error {
	_, err := VectorFrom(v[:])
	return err
}
