package pattern

import (
	"testing"

	"SwingRank/internal/domain/models"
)

func rsi(v float64) *float64 { return &v }

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want models.Pattern
	}{
		{"tight base beats breakout", Input{Uptrend: true, BullishCandles: true, Consolidation: true, VolumeSupport: true, NearResistance: true}, models.PatternTightBase},
		{"breakout", Input{Uptrend: true, BullishCandles: true, NearResistance: true}, models.PatternBreakoutSetup},
		{"breakout beats near high", Input{Uptrend: true, BullishCandles: true, NearResistance: true, Consolidation: false}, models.PatternBreakoutSetup},
		{"near 52w high", Input{Uptrend: true, NearResistance: true}, models.PatternNear52WHigh},
		{"pullback", Input{Uptrend: true, BullishCandles: true}, models.PatternPullbackContinuation},
		{"momentum", Input{Uptrend: true}, models.PatternMomentum},
		{"momentum when consolidating near resistance without volume", Input{Uptrend: true, NearResistance: true, Consolidation: true}, models.PatternMomentum},
		{"tight base without uptrend", Input{Consolidation: true, VolumeSupport: true}, models.PatternTightBase},
		{"rsi at threshold is not overbought", Input{Uptrend: true, RSI: rsi(75)}, models.PatternMomentum},
	}
	for _, c := range cases {
		got := Classify(c.in)
		if !got.Matched() || got.Label != c.want {
			t.Fatalf("%s: got %v want %s", c.name, got, c.want)
		}
	}
}

func TestClassifyVetoes(t *testing.T) {
	all := Input{Uptrend: true, BullishCandles: true, Consolidation: true, VolumeSupport: true, NearResistance: true}

	over := all
	over.RSI = rsi(80)
	if got := Classify(over); got.Matched() || got.Veto != models.VetoOverbought {
		t.Fatalf("rsi 80 should veto, got %v", got)
	}

	rej := all
	rej.Rejection = true
	if got := Classify(rej); got.Matched() || got.Veto != models.VetoRejection {
		t.Fatalf("rejection near resistance should veto, got %v", got)
	}

	// Rejection away from resistance does not veto.
	away := Input{Uptrend: true, Consolidation: true, VolumeSupport: true, Rejection: true}
	if got := Classify(away); got.Label != models.PatternTightBase {
		t.Fatalf("rejection away from resistance got %v", got)
	}

	if got := Classify(Input{}); got.Matched() || got.Veto != models.VetoNoSetup {
		t.Fatalf("no flags should yield no setup, got %v", got)
	}
}

func TestFromSignals(t *testing.T) {
	in := FromSignals(models.SignalSet{Uptrend: true, VolumeSupport: 1})
	if !in.Uptrend || !in.VolumeSupport {
		t.Fatalf("unexpected %+v", in)
	}
}
