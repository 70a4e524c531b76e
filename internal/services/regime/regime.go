// Package regime computes the benchmark trend status and per-symbol relative
// strength against the benchmark.
package regime

import (
	"context"

	"SwingRank/internal/domain/models"
	"SwingRank/internal/domain/repository"
	"SwingRank/internal/services/indicators"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/util"
)

const (
	EMAPeriod  = 50
	RSLookback = 50
)

// Neutral is the snapshot used when the benchmark is unavailable. It never
// blocks candidates.
func Neutral() *models.MarketRegime {
	return &models.MarketRegime{Status: models.RegimeNeutral}
}

// FromSeries classifies the benchmark: BULLISH when the last close is above
// EMA(50), BEARISH otherwise, NEUTRAL with fewer than 50 bars.
func FromSeries(bench *models.Series) *models.MarketRegime {
	if bench.Len() < EMAPeriod {
		return Neutral()
	}
	ema, _ := indicators.Last(indicators.AddEMA(bench, EMAPeriod))
	last := bench.Last().Close
	status := models.RegimeBearish
	if last > ema {
		status = models.RegimeBullish
	}
	return &models.MarketRegime{Benchmark: bench, EMA50: ema, Close: last, Status: status}
}

// Detector loads the benchmark once per run.
type Detector struct {
	src    repository.BarSource
	symbol string
	period repository.Period
	log    *logger.Logger
}

func NewDetector(src repository.BarSource, symbol string, period repository.Period, log *logger.Logger) *Detector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Detector{src: src, symbol: symbol, period: period, log: log}
}

// Snapshot never fails: a load error degrades to NEUTRAL with a warning.
func (d *Detector) Snapshot(ctx context.Context) *models.MarketRegime {
	s, err := d.src.LoadDailyBars(ctx, d.symbol, d.period)
	if err != nil || s.Len() < EMAPeriod {
		d.log.Warn("benchmark unavailable, assuming neutral regime",
			logger.String("benchmark", d.symbol), logger.Int("bars", s.Len()), logger.Error(err))
		return Neutral()
	}
	r := FromSeries(s)
	d.log.Info("market regime",
		logger.String("benchmark", d.symbol),
		logger.String("status", string(r.Status)),
		logger.Float64("close", r.Close),
		logger.Float64("ema_50", r.EMA50))
	return r
}

// RelativeStrength compares the stock's price ratio over lookback aligned
// bars with the benchmark's: (s[n-1]/s[n-lookback]) / (b[n-1]/b[n-lookback])
// on the inner join of both series by date, rounded to 3 decimals. It is 0
// when fewer than lookback dates align or a ratio is undefined.
func RelativeStrength(stock, bench *models.Series, lookback int) float64 {
	if stock.Len() == 0 || bench.Len() < lookback {
		return 0
	}
	benchClose := make(map[string]float64, bench.Len())
	for _, b := range bench.Bars {
		benchClose[util.FormatDay(b.Date)] = b.Close
	}
	var sc, bc []float64
	for _, b := range stock.Bars {
		if c, ok := benchClose[util.FormatDay(b.Date)]; ok {
			sc = append(sc, b.Close)
			bc = append(bc, c)
		}
	}
	n := len(sc)
	if n < lookback {
		return 0
	}
	s0, b0 := sc[n-lookback], bc[n-lookback]
	if s0 == 0 || b0 == 0 || bc[n-1] == 0 {
		return 0
	}
	benchRatio := bc[n-1] / b0
	if benchRatio == 0 {
		return 0
	}
	return util.Round((sc[n-1]/s0)/benchRatio, 3)
}
