package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/pkg/util"
)

// RankedRowHeader is the column order of every report.
var RankedRowHeader = []string{
	"rank", "symbol", "probability", "confidence", "pattern", "rule_score", "financial_label",
	"tp1", "tp2", "tp3", "sl", "trailing_sl", "p_tp1", "p_tp2", "p_tp3",
}

// CSVReportWriter writes <dir>/top_picks_<yyyy-mm-dd>.csv for each run with
// at least one pick. A rerun on the same day overwrites the file.
type CSVReportWriter struct {
	dir string
}

func NewCSVReportWriter(dir string) *CSVReportWriter { return &CSVReportWriter{dir: dir} }

func (w *CSVReportWriter) Name() string { return "csv" }

// Path returns the report file for run.
func (w *CSVReportWriter) Path(run *models.RankingRun) string {
	return filepath.Join(w.dir, "top_picks_"+util.FormatDay(run.Date)+".csv")
}

func (w *CSVReportWriter) Publish(_ context.Context, run *models.RankingRun) error {
	if len(run.Rows) == 0 {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	path := w.Path(run)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(RankedRowHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range run.Rows {
		if err := cw.Write(rowRecord(r)); err != nil {
			_ = f.Close()
			return fmt.Errorf("write row %s: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return os.Rename(tmp, path)
}

func rowRecord(r models.RankedRow) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.Itoa(r.Rank), r.Symbol, f(r.Probability), f(r.Confidence), string(r.Pattern),
		strconv.Itoa(r.RuleScore), r.FinancialLabel,
		f(r.TP1), f(r.TP2), f(r.TP3), f(r.SL), f(r.TrailingSL), f(r.PTP1), f(r.PTP2), f(r.PTP3),
	}
}

var _ domrepo.RankingSink = (*CSVReportWriter)(nil)
