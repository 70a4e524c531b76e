package models

import (
	"time"

	"SwingRank/pkg/util"
)

// FeatureVectorLen is the number of model inputs.
const FeatureVectorLen = 8

// FeatureVector is the ordered model input:
// [rule_score/10, ema_trend_strength, bullish_candles, consolidation,
// volume_support, near_resistance, financial_score, reserved].
type FeatureVector [FeatureVectorLen]float64

// Slice returns the vector as a slice for transports.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureVectorLen)
	copy(out, v[:])
	return out
}

// Candidate is the per-symbol signal bundle. MLProbability and Confidence are
// nil whenever Pattern did not match.
type Candidate struct {
	Symbol        string              `json:"symbol"`
	RuleScore     int                 `json:"rule_score"`
	Pattern       PatternResult       `json:"pattern"`
	MLProbability *float64            `json:"ml_probability"`
	Confidence    *float64            `json:"confidence"`
	Financial     FinancialAssessment `json:"financial"`
}

// Rankable reports whether the candidate may enter the ranking.
func (c Candidate) Rankable() bool {
	return c.Pattern.Matched() && c.MLProbability != nil && c.Confidence != nil
}

// TradePlan holds tiered targets, stops and per-tier hit probabilities.
type TradePlan struct {
	TP1        float64 `json:"tp1"`
	TP2        float64 `json:"tp2"`
	TP3        float64 `json:"tp3"`
	SL         float64 `json:"sl"`
	TrailingSL float64 `json:"trailing_sl"`
	PTP1       float64 `json:"p_tp1"`
	PTP2       float64 `json:"p_tp2"`
	PTP3       float64 `json:"p_tp3"`
}

// Evaluation is the full pipeline output for one symbol at its last bar.
// Skip is empty when the candidate is rankable.
type Evaluation struct {
	Symbol    string        `json:"symbol"`
	AsOf      time.Time     `json:"as_of"`
	LastClose float64       `json:"last_close"`
	Signals   SignalSet     `json:"signals"`
	RuleScore int           `json:"rule_score"`
	Features  FeatureVector `json:"features"`
	Candidate Candidate     `json:"candidate"`
	Plan      *TradePlan    `json:"plan,omitempty"`
	Skip      SkipReason    `json:"skip,omitempty"`
}

// RankedRow is the stable output schema consumed by reports and notifiers.
type RankedRow struct {
	Rank           int     `json:"rank"`
	Symbol         string  `json:"symbol"`
	Probability    float64 `json:"probability"`
	Confidence     float64 `json:"confidence"`
	Pattern        Pattern `json:"pattern"`
	RuleScore      int     `json:"rule_score"`
	FinancialLabel string  `json:"financial_label"`
	TP1            float64 `json:"tp1"`
	TP2            float64 `json:"tp2"`
	TP3            float64 `json:"tp3"`
	SL             float64 `json:"sl"`
	TrailingSL     float64 `json:"trailing_sl"`
	PTP1           float64 `json:"p_tp1"`
	PTP2           float64 `json:"p_tp2"`
	PTP3           float64 `json:"p_tp3"`
}

// NewRankedRow flattens a candidate and its plan. Probability is reported
// with 3 decimals.
func NewRankedRow(rank int, c Candidate, p TradePlan) RankedRow {
	row := RankedRow{
		Rank:           rank,
		Symbol:         c.Symbol,
		Pattern:        c.Pattern.Label,
		RuleScore:      c.RuleScore,
		FinancialLabel: c.Financial.String(),
		TP1:            p.TP1,
		TP2:            p.TP2,
		TP3:            p.TP3,
		SL:             p.SL,
		TrailingSL:     p.TrailingSL,
		PTP1:           p.PTP1,
		PTP2:           p.PTP2,
		PTP3:           p.PTP3,
	}
	if c.MLProbability != nil {
		row.Probability = util.Round(*c.MLProbability, 3)
	}
	if c.Confidence != nil {
		row.Confidence = *c.Confidence
	}
	return row
}

// SkipReason labels why a symbol was left out of the ranking.
type SkipReason string

const (
	SkipNoData       SkipReason = "no_data"
	SkipShortHistory SkipReason = "short_history"
	SkipIlliquid     SkipReason = "illiquid"
	SkipNoUptrend    SkipReason = "no_uptrend"
	SkipVetoed       SkipReason = "vetoed"
	SkipBearishGate  SkipReason = "bearish_gate"
	SkipFetchError   SkipReason = "fetch_error"
	SkipModelError   SkipReason = "model_error"
	SkipPanic        SkipReason = "panic"
)

// RankingRun is one completed ranking over a universe. Evaluated counts the
// symbols that passed every gate, before the top-N cut.
type RankingRun struct {
	ID        string             `json:"id"`
	Date      time.Time          `json:"date"`
	Regime    RegimeStatus       `json:"regime"`
	Universe  int                `json:"universe"`
	Evaluated int                `json:"evaluated"`
	Rows      []RankedRow        `json:"rows"`
	Skipped   map[SkipReason]int `json:"skipped"`
	Duration  time.Duration      `json:"duration_ns"`
}

// BacktestTrade is one simulated entry and exit.
type BacktestTrade struct {
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Win        bool      `json:"win"`
	Return     float64   `json:"return"`
}

// BacktestResult summarises a rule-only walk over one symbol.
type BacktestResult struct {
	Symbol    string          `json:"symbol"`
	Days      int             `json:"days"`
	Trades    []BacktestTrade `json:"trades"`
	Wins      int             `json:"wins"`
	Losses    int             `json:"losses"`
	WinRate   float64         `json:"win_rate"`
	AvgReturn float64         `json:"avg_return"`
}
