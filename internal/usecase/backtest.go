package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	"SwingRank/internal/services/indicators"
	"SwingRank/internal/services/structure"
	"SwingRank/pkg/util"
)

const (
	// BacktestWarmup bars precede the simulated window.
	BacktestWarmup = 50
	// BacktestMaxRSI is the RSI an entry must stay below.
	BacktestMaxRSI = 70
	// BacktestTargetATR is the TP1 distance in ATRs.
	BacktestTargetATR = 1.5
)

// ErrNotEnoughHistory is returned when a backtest window cannot be filled.
var ErrNotEnoughHistory = errors.New("not enough history for backtest")

// Backtester walks the rule-only entry logic forward over past bars.
type Backtester struct {
	bars domrepo.BarSource
}

func NewBacktester(bars domrepo.BarSource) *Backtester { return &Backtester{bars: bars} }

// Backtest loads enough history for symbol and simulates the last days bars.
func (b *Backtester) Backtest(ctx context.Context, symbol string, days int) (*models.BacktestResult, error) {
	s, err := b.bars.LoadDailyBars(ctx, symbol, periodFor(days+BacktestWarmup))
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", symbol, err)
	}
	return Simulate(s, days)
}

// periodFor returns the shortest period holding n trading days.
func periodFor(n int) domrepo.Period {
	switch {
	case n <= 120:
		return domrepo.Period6M
	case n <= 245:
		return domrepo.Period1Y
	case n <= 490:
		return domrepo.Period2Y
	default:
		return domrepo.Period5Y
	}
}

// Simulate runs over the last days+50 bars of s. From bar 50 on, an open
// trade exits at TP1 when the high reaches it, else at the stop when the low
// does; while flat, an uptrend with RSI below 70 enters at the close with
// TP1 = close+1.5*ATR and stop = close-ATR. A trade still open at the end is
// not counted.
func Simulate(s *models.Series, days int) (*models.BacktestResult, error) {
	if days < 1 || s.Len() < days+BacktestWarmup {
		return nil, fmt.Errorf("%s: have %d bars, need %d: %w", s.Symbol, s.Len(), days+BacktestWarmup, ErrNotEnoughHistory)
	}
	w := s.Tail(days + BacktestWarmup)
	ema10 := indicators.AddEMA(w, 10)
	ema15 := indicators.AddEMA(w, 15)
	atr := indicators.AddATR(w, 14)
	rsi := indicators.AddRSI(w, 14)

	res := &models.BacktestResult{Symbol: s.Symbol, Days: days}
	var (
		open    bool
		entry   models.Bar
		tp1, sl float64
		sumRet  float64
	)
	for i := BacktestWarmup; i < w.Len(); i++ {
		bar := w.Bars[i]
		if open {
			exit, win := 0.0, false
			switch {
			case bar.High >= tp1:
				exit, win = tp1, true
			case bar.Low <= sl:
				exit = sl
			default:
				continue
			}
			ret := (exit - entry.Close) / entry.Close
			res.Trades = append(res.Trades, models.BacktestTrade{
				EntryDate:  entry.Date,
				ExitDate:   bar.Date,
				EntryPrice: entry.Close,
				ExitPrice:  util.Round(exit, 2),
				Win:        win,
				Return:     util.Round(ret, 4),
			})
			sumRet += ret
			if win {
				res.Wins++
			} else {
				res.Losses++
			}
			open = false
			continue
		}

		uptrend := i+1 >= structure.UptrendMinBars && ema10[i] > ema15[i] && bar.Close > ema15[i]
		if !uptrend || !(rsi[i] < BacktestMaxRSI) || math.IsNaN(atr[i]) {
			continue
		}
		open, entry = true, bar
		tp1 = bar.Close + BacktestTargetATR*atr[i]
		sl = bar.Close - atr[i]
	}

	if n := len(res.Trades); n > 0 {
		res.WinRate = util.Round(float64(res.Wins)/float64(n), 4)
		res.AvgReturn = util.Round(sumRet/float64(n), 4)
	}
	return res, nil
}
