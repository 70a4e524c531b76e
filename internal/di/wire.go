//go:build wireinject
// +build wireinject

package di

import (
	"SwingRank/internal/usecase"
	"SwingRank/pkg/config"
	"SwingRank/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideClickHouseClient,
	ProvideKafkaProducer,
	ProvideBarCache,
)

var marketDataSet = wire.NewSet(
	ProvideFinnhubClient,
	ProvideFetchPipeline,
	ProvideBarStore,
	ProvideBarSource,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		marketDataSet,

		// Scoring
		ProvideRegimeDetector,
		ProvideFinancialScorer,
		ProvideProbabilityModel,
		ProvideEvaluator,

		// Use cases and sinks
		ProvideRankingUseCase,
		ProvideRankingStore,
		ProvideHub,
		ProvideSinks,
		ProvideUniverse,
		ProvideDailyRun,
		ProvideBacktester,
		ProvideBarSync,

		// Transport
		ProvideRankingsHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeBacktester wires only what a backtest reads.
func InitializeBacktester(cfg *config.Config) (*usecase.Backtester, func(), error) {
	wire.Build(
		infraSet,
		marketDataSet,
		ProvideBacktester,
	)
	return nil, nil, nil
}
