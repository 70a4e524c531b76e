package financials

import (
	"context"
	"errors"
	"math"
	"testing"

	"SwingRank/internal/domain/models"
)

func quarters(items ...map[string]float64) *models.QuarterlyFinancials {
	f := &models.QuarterlyFinancials{Symbol: "X"}
	for _, it := range items {
		f.Quarters = append(f.Quarters, models.Quarter{Items: it})
	}
	return f
}

func TestAnalyzeGrowth(t *testing.T) {
	cases := []struct {
		name      string
		cur, prev float64
		label     float64
	}{
		{"flat", 100, 100, 0.5},
		{"plus 10%", 110, 100, 0.7},
		{"plus 40% clamps", 140, 100, 1},
		{"minus 40% clamps", 60, 100, 0},
		{"minus 5%", 95, 100, 0.4},
	}
	for _, c := range cases {
		a := Analyze(quarters(map[string]float64{"Total Revenue": c.cur}, map[string]float64{"Total Revenue": c.prev}))
		if a.Neutral || a.Label != c.label {
			t.Fatalf("%s: got %+v want label %v", c.name, a, c.label)
		}
		want := (c.label - 0.5) * 0.2
		if math.Abs(a.Score-want) > 1e-12 || a.Score < -0.1 || a.Score > 0.1 {
			t.Fatalf("%s: score %v want %v", c.name, a.Score, want)
		}
	}
}

func TestAnalyzeKeyPriority(t *testing.T) {
	a := Analyze(quarters(
		map[string]float64{"Operating Revenue": 120, "Revenue": 100},
		map[string]float64{"Operating Revenue": 100, "Revenue": 100},
	))
	if a.Label != 0.9 {
		t.Fatalf("operating revenue should win over revenue, got %+v", a)
	}
	// Total Revenue only in one quarter falls through to the next key.
	a = Analyze(quarters(
		map[string]float64{"Total Revenue": 500, "Revenue": 100},
		map[string]float64{"Revenue": 100},
	))
	if a.Label != 0.5 {
		t.Fatalf("expected fallback to Revenue, got %+v", a)
	}
}

func TestAnalyzeNeutralCases(t *testing.T) {
	cases := []struct {
		name   string
		in     *models.QuarterlyFinancials
		reason string
	}{
		{"nil", nil, ""},
		{"one quarter", quarters(map[string]float64{"Revenue": 1}), ""},
		{"no key", quarters(map[string]float64{"EBIT": 1}, map[string]float64{"EBIT": 2}), ReasonNoKey},
		{"nan", quarters(map[string]float64{"Revenue": math.NaN()}, map[string]float64{"Revenue": 2}), ReasonTypeErr},
		{"zero previous", quarters(map[string]float64{"Revenue": 10}, map[string]float64{"Revenue": 0}), ReasonZeroPrev},
	}
	for _, c := range cases {
		a := Analyze(c.in)
		if !a.Neutral || a.Score != 0 || a.Reason != c.reason {
			t.Fatalf("%s: got %+v", c.name, a)
		}
	}
}

func TestAssessmentString(t *testing.T) {
	if s := (models.FinancialAssessment{Label: 0.7}).String(); s != "0.70" {
		t.Fatalf("label string %q", s)
	}
	if s := models.NeutralAssessment(ReasonZeroPrev).String(); s != "Neutral (ZeroPrev)" {
		t.Fatalf("neutral string %q", s)
	}
	if s := models.NeutralAssessment("").String(); s != "Neutral" {
		t.Fatalf("neutral string %q", s)
	}
}

type failingSource struct{}

func (failingSource) LoadQuarterlyFinancials(ctx context.Context, symbol string) (*models.QuarterlyFinancials, error) {
	return nil, errors.New("down")
}

type recordingSource struct{ got string }

func (r *recordingSource) LoadQuarterlyFinancials(ctx context.Context, symbol string) (*models.QuarterlyFinancials, error) {
	r.got = symbol
	return quarters(map[string]float64{"Revenue": 110}, map[string]float64{"Revenue": 100}), nil
}

func TestScorer(t *testing.T) {
	a := NewScorer(failingSource{}, ".NS", nil).Assess(context.Background(), "TCS")
	if !a.Neutral || a.Score != 0 {
		t.Fatalf("fetch failure should be neutral, got %+v", a)
	}

	src := &recordingSource{}
	s := NewScorer(src, ".NS", nil)
	if a := s.Assess(context.Background(), "TCS"); a.Label != 0.7 {
		t.Fatalf("unexpected %+v", a)
	}
	if src.got != "TCS.NS" {
		t.Fatalf("ticker=%q want TCS.NS", src.got)
	}
	if s.Ticker("INFY.NS") != "INFY.NS" {
		t.Fatalf("suffix must not be doubled")
	}
}
