// Package pattern assigns the dominant setup label to a symbol.
package pattern

import "SwingRank/internal/domain/models"

// OverboughtRSI is the RSI level above which no setup is taken.
const OverboughtRSI = 75

// Input is the subset of structural signals the classifier reads.
type Input struct {
	Uptrend        bool
	BullishCandles bool
	Consolidation  bool
	VolumeSupport  bool
	NearResistance bool
	Rejection      bool
	RSI            *float64
}

// FromSignals builds an Input from a signal set.
func FromSignals(s models.SignalSet) Input {
	return Input{
		Uptrend:        s.Uptrend,
		BullishCandles: s.BullishCandles,
		Consolidation:  s.Consolidation,
		VolumeSupport:  s.VolumeSupport == 1,
		NearResistance: s.NearResistance,
		Rejection:      s.Rejection,
		RSI:            s.RSI,
	}
}

type rule struct {
	veto  models.VetoReason
	label models.Pattern
	when  func(Input) bool
}

// rules are evaluated in order and the first match wins. Vetoes come first,
// and TIGHT_BASE outranks every other setup with matching flags.
var rules = []rule{
	{veto: models.VetoOverbought, when: func(in Input) bool { return in.RSI != nil && *in.RSI > OverboughtRSI }},
	{veto: models.VetoRejection, when: func(in Input) bool { return in.NearResistance && in.Rejection }},
	{label: models.PatternTightBase, when: func(in Input) bool { return in.Consolidation && in.VolumeSupport }},
	{label: models.PatternBreakoutSetup, when: func(in Input) bool { return in.NearResistance && in.Uptrend && in.BullishCandles }},
	{label: models.PatternNear52WHigh, when: func(in Input) bool { return in.NearResistance && in.Uptrend && !in.Consolidation }},
	{label: models.PatternPullbackContinuation, when: func(in Input) bool { return in.Uptrend && in.BullishCandles && !in.NearResistance }},
	{label: models.PatternMomentum, when: func(in Input) bool { return in.Uptrend }},
}

// Classify returns the first matching rule's outcome, or a no-setup veto.
func Classify(in Input) models.PatternResult {
	for _, r := range rules {
		if !r.when(in) {
			continue
		}
		if r.veto != models.VetoNone {
			return models.Vetoed(r.veto)
		}
		return models.Match(r.label)
	}
	return models.Vetoed(models.VetoNoSetup)
}
