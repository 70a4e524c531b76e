package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	pkgch "SwingRank/pkg/clickhouse"
	applogger "SwingRank/pkg/logger"
)

const barInsertChunk = 2000

// CHBarStore serves daily bars out of ClickHouse and ingests them from another
// source.
type CHBarStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
	l     *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, l *applogger.Logger) *CHBarStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHBarStore{db: ch.DB(), table: ch.Database() + ".daily_bars", now: time.Now, l: l}
}

func (s *CHBarStore) schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            date   Date,
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Float64,
            ingested_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(ingested_at)
        ORDER BY (symbol, date)
    `, s.table)}
}

func (s *CHBarStore) Init(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

func (s *CHBarStore) LoadDailyBars(ctx context.Context, symbol string, period domrepo.Period) (*models.Series, error) {
	start := time.Now()
	from := domrepo.NormalizePeriod(string(period)).Start(s.now())
	q := fmt.Sprintf(`
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND date >= ?
        ORDER BY date ASC
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.l.Error("clickhouse daily_bars query error",
			applogger.String("symbol", symbol),
			applogger.String("period", string(period)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("load bars %s: %w", symbol, err)
	}
	defer rows.Close()

	bars := make([]models.Bar, 0, 256)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	s.l.Debug("clickhouse daily_bars ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.NewSeries(symbol, bars), nil
}

// StoreBars upserts bars in chunks. Re-ingesting a day replaces it.
func (s *CHBarStore) StoreBars(ctx context.Context, symbol string, bars []models.Bar) error {
	for start := 0; start < len(bars); start += barInsertChunk {
		end := start + barInsertChunk
		if end > len(bars) {
			end = len(bars)
		}
		q, args := barInsert(s.table, symbol, bars[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store bars %s: %w", symbol, err)
		}
	}
	return nil
}

func barInsert(table, symbol string, bars []models.Bar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*7)
	for _, b := range bars {
		if b.Date.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume) VALUES %s", table, strings.Join(values, ","))
	return q, args
}

func (s *CHBarStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
