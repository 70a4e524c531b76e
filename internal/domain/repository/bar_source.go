package repository

import (
	"context"

	"SwingRank/internal/domain/models"
)

// BarSource loads daily bar history for a symbol. Implementations return
// models.ErrNoData (possibly wrapped) when nothing usable exists and never panic.
type BarSource interface {
	LoadDailyBars(ctx context.Context, symbol string, period Period) (*models.Series, error)
}

// FinancialSource loads quarterly income-statement data, most recent first.
type FinancialSource interface {
	LoadQuarterlyFinancials(ctx context.Context, symbol string) (*models.QuarterlyFinancials, error)
}

// BarSourceFunc adapts a function to BarSource.
type BarSourceFunc func(ctx context.Context, symbol string, period Period) (*models.Series, error)

func (f BarSourceFunc) LoadDailyBars(ctx context.Context, symbol string, period Period) (*models.Series, error) {
	return f(ctx, symbol, period)
}
