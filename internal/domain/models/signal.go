package models

import (
	"fmt"
	"strconv"
)

// Pattern is the dominant setup label assigned to a symbol.
type Pattern string

const (
	PatternNone                 Pattern = ""
	PatternTightBase            Pattern = "TIGHT_BASE"
	PatternBreakoutSetup        Pattern = "BREAKOUT_SETUP"
	PatternNear52WHigh          Pattern = "NEAR_52W_HIGH"
	PatternPullbackContinuation Pattern = "PULLBACK_CONTINUATION"
	PatternMomentum             Pattern = "MOMENTUM"
)

// VetoReason explains why a symbol got no pattern.
type VetoReason string

const (
	VetoNone       VetoReason = ""
	VetoOverbought VetoReason = "overbought"
	VetoRejection  VetoReason = "rejection"
	VetoNoSetup    VetoReason = "no_setup"
)

// PatternResult is either a matched pattern or a veto, never both.
type PatternResult struct {
	Label Pattern    `json:"label,omitempty"`
	Veto  VetoReason `json:"veto,omitempty"`
}

func Match(p Pattern) PatternResult { return PatternResult{Label: p} }

func Vetoed(r VetoReason) PatternResult { return PatternResult{Veto: r} }

// Matched reports whether a pattern was assigned.
func (r PatternResult) Matched() bool { return r.Label != PatternNone && r.Veto == VetoNone }

func (r PatternResult) String() string {
	if r.Matched() {
		return string(r.Label)
	}
	return "veto:" + string(r.Veto)
}

// SignalSet holds the structural state of a symbol at its last closed bar.
type SignalSet struct {
	Uptrend           bool     `json:"uptrend"`
	BullishCandles    bool     `json:"bullish_candles"`
	Consolidation     bool     `json:"consolidation"`
	VolumeSupport     int      `json:"volume_support"`
	Resistance        *float64 `json:"resistance"`
	NearResistance    bool     `json:"near_resistance"`
	Rejection         bool     `json:"rejection"`
	StrongTrend       bool     `json:"strong_trend"`
	WeeklyTrend       bool     `json:"weekly_trend"`
	VolatilitySqueeze bool     `json:"volatility_squeeze"`
	RelativeStrength  float64  `json:"relative_strength"`
	RSI               *float64 `json:"rsi"`
	EMATrendStrength  float64  `json:"ema_trend_strength"`
	ATR               float64  `json:"atr"`
	ADX               *float64 `json:"adx"`
}

// RegimeStatus is the benchmark trend state for a run.
type RegimeStatus string

const (
	RegimeBullish RegimeStatus = "BULLISH"
	RegimeBearish RegimeStatus = "BEARISH"
	RegimeNeutral RegimeStatus = "NEUTRAL"
)

// MarketRegime is computed once per run and shared read-only by every
// evaluation in that run.
type MarketRegime struct {
	Benchmark *Series      `json:"-"`
	EMA50     float64      `json:"ema_50"`
	Close     float64      `json:"close"`
	Status    RegimeStatus `json:"status"`
}

// Blocks reports whether the regime restricts candidates. NEUTRAL never does.
func (m *MarketRegime) Blocks() bool {
	return m != nil && m.Status == RegimeBearish
}

// FinancialAssessment is a growth score or a neutral outcome carrying why the
// data was unusable. Score is always 0 when Neutral.
type FinancialAssessment struct {
	Label   float64 `json:"label"`
	Score   float64 `json:"score"`
	Neutral bool    `json:"neutral"`
	Reason  string  `json:"reason,omitempty"`
}

// NeutralAssessment builds the neutral variant.
func NeutralAssessment(reason string) FinancialAssessment {
	return FinancialAssessment{Neutral: true, Reason: reason}
}

// String renders the label for reports: "0.85", "Neutral" or "Neutral (NoKey)".
func (f FinancialAssessment) String() string {
	if !f.Neutral {
		return strconv.FormatFloat(f.Label, 'f', 2, 64)
	}
	if f.Reason == "" {
		return "Neutral"
	}
	return fmt.Sprintf("Neutral (%s)", f.Reason)
}

// Quarter is one reporting period with its income-statement line items.
type Quarter struct {
	Period string             `json:"period"`
	Items  map[string]float64 `json:"items"`
}

// QuarterlyFinancials lists quarters most recent first.
type QuarterlyFinancials struct {
	Symbol   string    `json:"symbol"`
	Quarters []Quarter `json:"quarters"`
}
