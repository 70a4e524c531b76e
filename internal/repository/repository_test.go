package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SwingRank/internal/domain/models"
)

func sampleRun() *models.RankingRun {
	return &models.RankingRun{
		ID:     "run-1",
		Date:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Regime: models.RegimeBullish,
		Rows: []models.RankedRow{
			{Rank: 1, Symbol: "AAA.NS", Probability: 0.712, Confidence: 0.801, Pattern: models.PatternTightBase, RuleScore: 7,
				FinancialLabel: "0.70", TP1: 102.4, TP2: 104.4, TP3: 107, SL: 98, TrailingSL: 97, PTP1: 0.93, PTP2: 0.71, PTP3: 0.43},
			{Rank: 2, Symbol: "BBB.NS", Probability: 0.6, Confidence: 0.7, Pattern: models.PatternMomentum, RuleScore: 6,
				FinancialLabel: "Neutral"},
		},
	}
}

func TestCSVReportWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVReportWriter(dir)
	run := sampleRun()
	if err := w.Publish(context.Background(), run); err != nil {
		t.Fatalf("publish: %v", err)
	}
	path := filepath.Join(dir, "top_picks_2024-05-02.csv")
	if w.Path(run) != path {
		t.Fatalf("path=%s", w.Path(run))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records", len(recs))
	}
	if strings.Join(recs[0], ",") != strings.Join(RankedRowHeader, ",") {
		t.Fatalf("header=%v", recs[0])
	}
	want := "1,AAA.NS,0.712,0.801,TIGHT_BASE,7,0.70,102.4,104.4,107,98,97,0.93,0.71,0.43"
	if got := strings.Join(recs[1], ","); got != want {
		t.Fatalf("row=%s", got)
	}
}

func TestCSVReportWriterSkipsEmptyRun(t *testing.T) {
	dir := t.TempDir()
	run := &models.RankingRun{Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)}
	if err := NewCSVReportWriter(dir).Publish(context.Background(), run); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "top_picks_2024-05-03.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no report for an empty run, got %v", err)
	}
}

func TestReadUniverse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"header", "Company,Symbol\nA Corp,aaa.ns\nB Corp, BBB.NS\nA again,AAA.NS\n", "AAA.NS,BBB.NS"},
		{"no header", "CCC.NS\nDDD.NS\n\n", "CCC.NS,DDD.NS"},
		{"bom", "\ufeffsymbol\nEEE.NS\n", "EEE.NS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadUniverse(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if strings.Join(got, ",") != tc.want {
				t.Fatalf("got %v", got)
			}
		})
	}
}

func TestLoadUniverseMissingFile(t *testing.T) {
	if _, err := LoadUniverse(filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestMemoryRankingStore(t *testing.T) {
	s := NewMemoryRankingStore()
	ctx := context.Background()
	if _, err := s.Latest(ctx); !errors.Is(err, ErrNoRun) {
		t.Fatalf("expected ErrNoRun, got %v", err)
	}
	run := sampleRun()
	_ = s.Publish(ctx, run)
	got, err := s.Latest(ctx)
	if err != nil || got.ID != "run-1" {
		t.Fatalf("latest=%v err=%v", got, err)
	}
}

func TestRankingInsert(t *testing.T) {
	q, args := rankingInsert("swingrank.ranked_picks", sampleRun())
	if !strings.HasPrefix(q, "INSERT INTO swingrank.ranked_picks") {
		t.Fatalf("query=%s", q)
	}
	if strings.Count(q, "(?,") != 2 || len(args) != 36 {
		t.Fatalf("placeholders=%d args=%d", strings.Count(q, "(?,"), len(args))
	}
	if q, _ := rankingInsert("t", &models.RankingRun{}); q != "" {
		t.Fatalf("empty run should produce no insert")
	}
}

func TestBarInsertSkipsUndatedBars(t *testing.T) {
	bars := []models.Bar{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 10},
		{Close: 11},
	}
	q, args := barInsert("swingrank.daily_bars", "AAA", bars)
	if strings.Count(q, "(?,") != 1 || len(args) != 7 || args[0] != "AAA" {
		t.Fatalf("q=%s args=%v", q, args)
	}
}
