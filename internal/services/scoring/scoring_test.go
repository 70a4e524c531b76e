package scoring

import (
	"errors"
	"testing"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/domain/service"
)

func TestRuleScoreBoundsForEveryCombination(t *testing.T) {
	// Nine independent signals; walk all 512 combinations.
	for mask := 0; mask < 1<<9; mask++ {
		on := func(bit int) bool { return mask&(1<<bit) != 0 }
		s := models.SignalSet{
			Uptrend:           on(0),
			BullishCandles:    on(1),
			Consolidation:     on(2),
			NearResistance:    on(4),
			StrongTrend:       on(5),
			WeeklyTrend:       on(6),
			VolatilitySqueeze: on(7),
		}
		if on(3) {
			s.VolumeSupport = 1
		}
		if on(8) {
			s.RelativeStrength = 1.2
		}
		got := RuleScore(s)
		if got < 0 || got > MaxRuleScore {
			t.Fatalf("mask %b: score %d out of range", mask, got)
		}
	}
}

func TestRuleScoreWeights(t *testing.T) {
	if got := RuleScore(models.SignalSet{Uptrend: true}); got != 2 {
		t.Fatalf("uptrend alone=%d want 2", got)
	}
	all := models.SignalSet{
		Uptrend: true, BullishCandles: true, Consolidation: true, VolumeSupport: 1,
		NearResistance: true, StrongTrend: true, WeeklyTrend: true, VolatilitySqueeze: true,
		RelativeStrength: 1.06,
	}
	if got := RuleScore(all); got != 10 {
		t.Fatalf("all signals=%d want 10", got)
	}
	all.RelativeStrength = 1.05
	if got := RuleScore(all); got != 9 {
		t.Fatalf("rs at 1.05 must not score, got %d", got)
	}
}

func TestFeaturesOrder(t *testing.T) {
	s := models.SignalSet{EMATrendStrength: 0.02, BullishCandles: true, VolumeSupport: 1, NearResistance: true}
	v := Features(s, 7, -0.05)
	want := models.FeatureVector{0.7, 0.02, 1, 0, 1, 1, -0.05, 0}
	if v != want {
		t.Fatalf("features=%v want %v", v, want)
	}
}

func TestVectorFromRejectsWrongShape(t *testing.T) {
	if _, err := VectorFrom(make([]float64, 7)); !errors.Is(err, service.ErrFeatureContract) {
		t.Fatalf("expected contract error, got %v", err)
	}
	if _, err := VectorFrom(make([]float64, 8)); err != nil {
		t.Fatalf("unexpected %v", err)
	}
}
