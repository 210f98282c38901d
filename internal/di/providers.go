package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"BotBourse/internal/domain/repository"
	"BotBourse/internal/handler/api"
	mid "BotBourse/internal/middleware"
	internalrepo "BotBourse/internal/repository"
	icache "BotBourse/internal/service/cache"
	"BotBourse/internal/service/quotes"
	"BotBourse/internal/services/analytics"
	"BotBourse/internal/services/features"
	"BotBourse/internal/usecase"
	pkgcache "BotBourse/pkg/cache"
	pkgch "BotBourse/pkg/clickhouse"
	"BotBourse/pkg/config"
	pkgkafka "BotBourse/pkg/kafka"
	applogger "BotBourse/pkg/logger"
	"BotBourse/pkg/metrics"
	pkgqueue "BotBourse/pkg/queue"
	"BotBourse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS botbourse",
		"CREATE TABLE IF NOT EXISTS botbourse.quotes_stream (ts DateTime64(3), ticker String, price Float64, volume Float64, source String, event_id String, seq UInt64) ENGINE=MergeTree ORDER BY (ticker, ts)",
		"CREATE TABLE IF NOT EXISTS botbourse.daily_candles (ticker String, day Date, open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=ReplacingMergeTree ORDER BY (ticker, day)",
		"CREATE TABLE IF NOT EXISTS botbourse.instrument_features (ticker String, name String, sector String, region String, asset_type String, price Float64, change_pct Float64, rsi Nullable(Float64), adx Nullable(Float64), macd_hist Nullable(Float64), vol_20d Nullable(Float64), vol_60d Nullable(Float64), drawdown Nullable(Float64), ret_5d Nullable(Float64), ret_20d Nullable(Float64), ret_60d Nullable(Float64), volume_ratio Nullable(Float64), risk_score Int32, as_of DateTime) ENGINE=ReplacingMergeTree(as_of) ORDER BY ticker",
		"CREATE TABLE IF NOT EXISTS botbourse.predictions (ticker String, horizon String, trend String, expected_return Float64, confidence Float64, as_of DateTime) ENGINE=ReplacingMergeTree(as_of) ORDER BY (ticker, horizon)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteStorage creates ClickHouse storage repository.
func ProvideQuoteStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".quotes_stream")
}

// ProvideQuotePublisher creates Kafka publisher repository.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaQuotesHandler registers handler for the quotes topic.
func ProvideKafkaQuotesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaQuotesHandler {
	return usecase.NewKafkaQuotesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideQuoteStream creates the WebSocket quote stream.
func ProvideQuoteStream(cfg *config.Config) repository.QuoteStream {
	return quotes.New(
		cfg.Quotes.APIKey,
		cfg.Quotes.WebSocketURL,
		cfg.Quotes.Tickers,
		cfg.Quotes.ReconnectDelay,
		cfg.Quotes.PingInterval,
	)
}

// ProvideQuoteProcessor creates quote processor use case.
func ProvideQuoteProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideQuoteCollector creates quote collector use case.
func ProvideQuoteCollector(
	stream repository.QuoteStream,
	processor *usecase.QuoteProcessor,
	metrics repository.Metrics,
) *usecase.QuoteCollector {
	// Build middleware pipeline between WebSocket and Kafka
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(stream, processor, metrics, pipe)
}

// ProvideMarketStore creates the ClickHouse-backed market store.
func ProvideMarketStore(chClient *pkgch.Client, l *applogger.Logger) repository.MarketStore {
	store := internalrepo.NewCHMarketStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideCacheService builds the layered cache used for the refresh
// lock. Nil when Redis is disabled.
func ProvideCacheService(cfg *config.Config) pkgcache.Service {
	if !cfg.Redis.Enabled {
		return nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		host = cfg.Redis.Addr
		portStr = "6379"
	}
	port, _ := strconv.Atoi(portStr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil
	}
	return pkgcache.NewLayeredCache(rc)
}

// ProvideSnapshotService creates the snapshot service.
func ProvideSnapshotService(store repository.MarketStore, l *applogger.Logger, cfg *config.Config, lock pkgcache.Service) *usecase.SnapshotService {
	snap := usecase.NewSnapshotService(store, analytics.NewNormalizer(), cfg.Snapshot.HistoryDays, l)
	if lock != nil {
		snap.SetLock(lock)
	}
	return snap
}

// ProvideRegimeDetector creates the watchlist rule engine with configured thresholds.
func ProvideRegimeDetector(cfg *config.Config) *analytics.RegimeDetector {
	th := analytics.Thresholds{
		VarianceRatio:   cfg.Analytics.VarianceRatio,
		DivergenceSigma: cfg.Analytics.DivergenceSigma,
		VolumeRatio:     cfg.Analytics.VolumeRatio,
	}
	garch := features.DefaultGarchParams()
	if cfg.Analytics.Garch.Omega > 0 {
		garch.Omega = cfg.Analytics.Garch.Omega
	}
	if cfg.Analytics.Garch.Alpha > 0 {
		garch.Alpha = cfg.Analytics.Garch.Alpha
	}
	if cfg.Analytics.Garch.Beta > 0 {
		garch.Beta = cfg.Analytics.Garch.Beta
	}
	return analytics.NewRegimeDetector(th, garch)
}

// ProvideAnalyticsUseCase wires the engine behind the snapshot.
func ProvideAnalyticsUseCase(
	snap *usecase.SnapshotService,
	detector *analytics.RegimeDetector,
	cfg *config.Config,
) *usecase.AnalyticsUseCase {
	return usecase.NewAnalyticsUseCase(
		snap,
		analytics.NewScreener(),
		analytics.NewSectorAggregator(),
		detector,
		analytics.NewPortfolioAggregator(),
		usecase.CacheTTLs{
			Sectors:   cfg.Analytics.CacheTTL.Sectors,
			Watchlist: cfg.Analytics.CacheTTL.Watchlist,
		},
	)
}

// ProvideCandlesUseCase creates the candles use case.
func ProvideCandlesUseCase(store repository.MarketStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideRedisCache creates the shared Redis client, or nil when disabled.
func ProvideRedisCache(cfg *config.Config) *icache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRedisQueue creates the queue consumer with the refresh job, or
// nil when Redis is disabled.
func ProvideRedisQueue(
	cfg *config.Config,
	l *applogger.Logger,
	rc *icache.RedisCache,
	snap *usecase.SnapshotService,
) *pkgqueue.RedisQueue {
	if rc == nil {
		return nil
	}
	qcfg := &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	jobs := []pkgqueue.Job{usecase.NewSnapshotRefreshJob(snap, l)}
	return pkgqueue.NewRedisConsumer(l, qcfg, rc.Client(), jobs)
}

// ProvideHTTPHandler creates the Echo handler for the analytics API.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.AnalyticsUseCase,
	candles *usecase.CandlesUseCase,
	quoteStore repository.Storage,
	rc *icache.RedisCache,
) *api.AnalyticsEchoHandler {
	h := api.NewAnalyticsEchoHandler(l, uc, candles)
	h.SetQuoteStore(quoteStore)
	if rc != nil {
		h.SetCache(rc)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaQuotesHandler,
	chClient *pkgch.Client,
	snap *usecase.SnapshotService,
	queue *pkgqueue.RedisQueue,
	handler *api.AnalyticsEchoHandler,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, snap, queue)
	app.SetHTTPHandler(handler)
	// attach quote processor to app for closing resources via collector
	if collector != nil {
		app.QuoteProc = collector.Processor()
	}
	return app
}
