package di

import (
	"context"
	"fmt"
	"time"

	"SwingRank/internal/domain/repository"
	domsvc "SwingRank/internal/domain/service"
	"SwingRank/internal/handler/api"
	mid "SwingRank/internal/middleware"
	internalrepo "SwingRank/internal/repository"
	icache "SwingRank/internal/service/cache"
	"SwingRank/internal/service/finnhub"
	"SwingRank/internal/service/notify"
	"SwingRank/internal/service/ratelimit"
	"SwingRank/internal/services/analytics"
	"SwingRank/internal/services/financials"
	"SwingRank/internal/services/liquidity"
	"SwingRank/internal/services/regime"
	"SwingRank/internal/usecase"
	pkgch "SwingRank/pkg/clickhouse"
	"SwingRank/pkg/config"
	xhttp "SwingRank/pkg/http"
	pkgkafka "SwingRank/pkg/kafka"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/metrics"
	"SwingRank/pkg/server"
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when
// metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(nil)
}

// ProvideClickHouseClient connects to ClickHouse when enabled and creates the
// database. A nil client means ClickHouse is off.
func ProvideClickHouseClient(cfg *config.Config, l *logger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse connected", logger.String("database", cfg.ClickHouse.Database))
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", logger.Error(err))
		}
	}, nil
}

// ProvideKafkaProducer creates a Kafka producer when enabled.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready", logger.Strings("brokers", cfg.Kafka.Brokers), logger.String("topic", cfg.Kafka.Topic))
	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka close error", logger.Error(err))
		}
	}, nil
}

// ProvideBarCache returns the configured bytes cache; nil when caching is off.
func ProvideBarCache(cfg *config.Config, l *logger.Logger) (icache.BytesCache, func(), error) {
	switch cfg.Cache.Type {
	case "redis":
		rc := icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case "memory":
		return icache.NewTTLCache(), func() {}, nil
	default:
		l.Debug("bar cache disabled")
		return nil, func() {}, nil
	}
}

// ProvideFinnhubClient creates the market-data REST client.
func ProvideFinnhubClient(cfg *config.Config) *finnhub.Client {
	return finnhub.New(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.MarketData.Timeout)
}

// ProvideFetchPipeline throttles, retries and validates provider calls.
func ProvideFetchPipeline(cfg *config.Config, fh *finnhub.Client, m repository.Metrics, l *logger.Logger) *mid.FetchPipeline {
	opts := []mid.PipelineOption{
		mid.WithLimiter(ratelimit.New(cfg.MarketData.RatePerSec, cfg.MarketData.Burst)),
		mid.WithMaxRetries(cfg.MarketData.RetryMax),
		mid.WithBackoff(cfg.MarketData.BackoffMin, cfg.MarketData.BackoffMax),
		mid.WithPipelineLogger(l),
	}
	if cfg.Financials.Enabled {
		opts = append(opts, mid.WithFinancials(fh))
	}
	return mid.NewFetchPipeline("finnhub", fh, m, opts...)
}

// ProvideBarStore returns the ClickHouse bar store, nil when ClickHouse is off.
func ProvideBarStore(ch *pkgch.Client, l *logger.Logger) (repository.BarStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHBarStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("bar store: %w", err)
	}
	return store, nil
}

// ProvideBarSource picks the configured history provider and puts the cache
// in front of it.
func ProvideBarSource(cfg *config.Config, pipe *mid.FetchPipeline, store repository.BarStore, c icache.BytesCache, l *logger.Logger) (repository.BarSource, error) {
	var src repository.BarSource = pipe
	if cfg.MarketData.Provider == "clickhouse" {
		if store == nil {
			return nil, fmt.Errorf("market_data.provider clickhouse needs an enabled clickhouse")
		}
		src = store
	}
	if c == nil {
		return src, nil
	}
	return icache.NewCachedBarSource(src, c, cfg.Cache.TTL, l), nil
}

func ProvideRegimeDetector(cfg *config.Config, src repository.BarSource, l *logger.Logger) *regime.Detector {
	return regime.NewDetector(src, cfg.Benchmark.Symbol, repository.NormalizePeriod(cfg.Benchmark.Period), l)
}

// ProvideFinancialScorer scores quarterly financials; with financials
// disabled every assessment is neutral.
func ProvideFinancialScorer(cfg *config.Config, pipe *mid.FetchPipeline, l *logger.Logger) *financials.Scorer {
	if !cfg.Financials.Enabled {
		return financials.NewScorer(nil, "", l)
	}
	return financials.NewScorer(pipe, cfg.Financials.SymbolSuffix, l)
}

// ProvideProbabilityModel loads the model once. Failure is fatal at start.
func ProvideProbabilityModel(cfg *config.Config, l *logger.Logger) (domsvc.ProbabilityModel, error) {
	switch cfg.Model.Type {
	case "http":
		m := analytics.NewHTTPProbabilityModel(analytics.NewHTTPServiceBase(cfg.Model.ServiceURL, cfg.Model.Timeout))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.Timeout*3)
		defer cancel()
		if err := m.Check(ctx); err != nil {
			return nil, err
		}
		l.Info("model service reachable", logger.String("url", cfg.Model.ServiceURL))
		return m, nil
	default:
		m, err := analytics.LoadLogisticModel(cfg.Model.Path)
		if err != nil {
			return nil, err
		}
		l.Info("model loaded", logger.String("path", cfg.Model.Path))
		return m, nil
	}
}

func ProvideEvaluator(cfg *config.Config, model domsvc.ProbabilityModel, fin *financials.Scorer, l *logger.Logger) *usecase.Evaluator {
	liq := liquidity.NewFilter(cfg.Liquidity.Lookback, cfg.Liquidity.MinPrice, cfg.Liquidity.MinAvgTurnover)
	return usecase.NewEvaluator(liq, model, analytics.NewDefaultBlender(), fin, l)
}

func ProvideRankingUseCase(cfg *config.Config, src repository.BarSource, det *regime.Detector, eval *usecase.Evaluator, m repository.Metrics, l *logger.Logger) *usecase.RankingUseCase {
	return usecase.NewRankingUseCase(src, det, eval, m, l,
		usecase.WithWorkers(cfg.Ranking.Workers),
		usecase.WithSymbolTimeout(cfg.Ranking.SymbolTimeout),
		usecase.WithMinHistory(cfg.Ranking.MinHistory),
		usecase.WithBearishMinScore(cfg.Ranking.BearishMinScore),
		usecase.WithPeriod(repository.NormalizePeriod(cfg.MarketData.Period)),
	)
}

// ProvideRankingStore keeps run history in ClickHouse when enabled, in
// memory otherwise.
func ProvideRankingStore(ch *pkgch.Client, l *logger.Logger) (repository.RankingStore, error) {
	if ch == nil {
		return internalrepo.NewMemoryRankingStore(), nil
	}
	store := internalrepo.NewCHRankingStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("ranking store: %w", err)
	}
	return store, nil
}

func ProvideHub(l *logger.Logger) *api.Hub { return api.NewHub(l) }

// ProvideSinks lists every enabled run target besides the ranking store.
func ProvideSinks(cfg *config.Config, producer *pkgkafka.Producer, hub *api.Hub, l *logger.Logger) []repository.RankingSink {
	sinks := []repository.RankingSink{hub}
	if cfg.Report.Enabled {
		sinks = append(sinks, internalrepo.NewCSVReportWriter(cfg.Report.OutputDir))
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaRankingPublisher(producer, cfg.Kafka.Topic))
	}
	if g := cfg.Notify.GreenAPI; g.Enabled {
		sinks = append(sinks, notify.NewWhatsAppNotifier(notify.GreenAPIConfig{
			Host:        g.Host,
			InstanceID:  g.InstanceID,
			APIToken:    g.APIToken,
			TargetPhone: g.TargetPhone,
			Timeout:     g.Timeout,
		}, l))
	}
	return sinks
}

// ProvideUniverse prefers inline symbols over the universe file.
func ProvideUniverse(cfg *config.Config) usecase.UniverseFunc {
	if len(cfg.Ranking.Symbols) > 0 {
		return usecase.StaticUniverse(cfg.Ranking.Symbols)
	}
	path := cfg.Ranking.UniverseFile
	return func() ([]string, error) { return internalrepo.LoadUniverse(path) }
}

func ProvideDailyRun(ranker *usecase.RankingUseCase, universe usecase.UniverseFunc, store repository.RankingStore, sinks []repository.RankingSink, m repository.Metrics, l *logger.Logger) *usecase.DailyRunUseCase {
	return usecase.NewDailyRunUseCase(ranker, universe, store, sinks, m, l)
}

func ProvideBacktester(src repository.BarSource) *usecase.Backtester {
	return usecase.NewBacktester(src)
}

// ProvideBarSync copies provider history into the ClickHouse bar store.
func ProvideBarSync(pipe *mid.FetchPipeline, store repository.BarStore, m repository.Metrics, l *logger.Logger) *usecase.BarSyncUseCase {
	if store == nil {
		return nil
	}
	return usecase.NewBarSyncUseCase(pipe, store, m, l)
}

func ProvideRankingsHandler(l *logger.Logger, daily *usecase.DailyRunUseCase, ranker *usecase.RankingUseCase, bt *usecase.Backtester, hub *api.Hub) xhttp.Handler {
	h := api.NewRankingsHandler(l, daily, ranker, bt, hub)
	h.SetRunLimiter(ratelimit.New(1.0/60, 2))
	return h
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, l *logger.Logger, daily *usecase.DailyRunUseCase, sync *usecase.BarSyncUseCase, handler xhttp.Handler, hub *api.Hub, store repository.RankingStore, universe usecase.UniverseFunc) *server.App {
	return server.New(cfg, l, daily, sync, handler, hub, store, universe)
}
