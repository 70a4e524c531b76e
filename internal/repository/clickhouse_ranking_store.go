package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	pkgch "SwingRank/pkg/clickhouse"
	applogger "SwingRank/pkg/logger"
)

// CHRankingStore keeps one row per ranked pick in <db>.ranked_picks.
type CHRankingStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHRankingStore(ch *pkgch.Client, l *applogger.Logger) *CHRankingStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHRankingStore{db: ch.DB(), table: ch.Database() + ".ranked_picks", l: l}
}

func (s *CHRankingStore) Name() string { return "clickhouse" }

func (s *CHRankingStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id      String,
            run_date    Date,
            created_at  DateTime DEFAULT now(),
            regime      LowCardinality(String),
            rank        UInt16,
            symbol      String,
            probability Float64,
            confidence  Float64,
            pattern     LowCardinality(String),
            rule_score  UInt8,
            financial_label String,
            tp1 Float64, tp2 Float64, tp3 Float64,
            sl  Float64, trailing_sl Float64,
            p_tp1 Float64, p_tp2 Float64, p_tp3 Float64
        ) ENGINE = MergeTree
        ORDER BY (run_date, run_id, rank)
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init %s: %w", s.table, err)
	}
	return nil
}

// Publish writes every row of run. An empty run stores nothing.
func (s *CHRankingStore) Publish(ctx context.Context, run *models.RankingRun) error {
	q, args := rankingInsert(s.table, run)
	if q == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store ranking %s: %w", run.ID, err)
	}
	s.l.Debug("ranking stored", applogger.String("run_id", run.ID), applogger.Int("rows", len(run.Rows)))
	return nil
}

func rankingInsert(table string, run *models.RankingRun) (string, []interface{}) {
	if run == nil || len(run.Rows) == 0 {
		return "", nil
	}
	values := make([]string, 0, len(run.Rows))
	args := make([]interface{}, 0, len(run.Rows)*18)
	for _, r := range run.Rows {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			run.ID, run.Date, string(run.Regime),
			uint16(r.Rank), r.Symbol, r.Probability, r.Confidence, string(r.Pattern), uint8(r.RuleScore), r.FinancialLabel,
			r.TP1, r.TP2, r.TP3, r.SL, r.TrailingSL, r.PTP1, r.PTP2, r.PTP3,
		)
	}
	q := fmt.Sprintf(`INSERT INTO %s (run_id, run_date, regime, rank, symbol, probability, confidence, pattern, rule_score,
        financial_label, tp1, tp2, tp3, sl, trailing_sl, p_tp1, p_tp2, p_tp3) VALUES %s`, table, strings.Join(values, ","))
	return q, args
}

// Latest rebuilds the most recently stored run. Only the ranked rows are kept
// in ClickHouse, so counters such as Skipped come back empty.
func (s *CHRankingStore) Latest(ctx context.Context) (*models.RankingRun, error) {
	q := fmt.Sprintf(`
        SELECT run_id, run_date, regime, rank, symbol, probability, confidence, pattern, rule_score,
               financial_label, tp1, tp2, tp3, sl, trailing_sl, p_tp1, p_tp2, p_tp3
        FROM %[1]s
        WHERE run_id = (SELECT run_id FROM %[1]s ORDER BY created_at DESC LIMIT 1)
        ORDER BY rank ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("latest ranking: %w", err)
	}
	defer rows.Close()

	var run *models.RankingRun
	for rows.Next() {
		var (
			id, regime, pattern string
			date                time.Time
			rank                uint16
			score               uint8
			r                   models.RankedRow
		)
		if err := rows.Scan(&id, &date, &regime, &rank, &r.Symbol, &r.Probability, &r.Confidence, &pattern,
			&score, &r.FinancialLabel, &r.TP1, &r.TP2, &r.TP3, &r.SL, &r.TrailingSL, &r.PTP1, &r.PTP2, &r.PTP3); err != nil {
			return nil, fmt.Errorf("scan ranked row: %w", err)
		}
		r.Rank, r.RuleScore, r.Pattern = int(rank), int(score), models.Pattern(pattern)
		if run == nil {
			run = &models.RankingRun{ID: id, Date: date, Regime: models.RegimeStatus(regime), Skipped: map[models.SkipReason]int{}}
		}
		run.Rows = append(run.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if run == nil {
		return nil, ErrNoRun
	}
	return run, nil
}

func (s *CHRankingStore) Health(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *CHRankingStore) Close() error { return nil }

// ErrNoRun is returned by stores that have not seen a run yet.
var ErrNoRun = errors.New("no ranking run recorded")

var _ domrepo.RankingStore = (*CHRankingStore)(nil)
