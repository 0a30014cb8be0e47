package di

import (
	"context"
	"fmt"
	"time"

	"AlbionPulse/internal/aggregate"
	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/domain/repository"
	"AlbionPulse/internal/handler/api"
	"AlbionPulse/internal/ingest"
	"AlbionPulse/internal/normalize"
	internalrepo "AlbionPulse/internal/repository"
	"AlbionPulse/internal/scanner"
	"AlbionPulse/internal/service/albion"
	"AlbionPulse/internal/service/ratelimit"
	"AlbionPulse/internal/usecase"
	"AlbionPulse/pkg/cache"
	pkgch "AlbionPulse/pkg/clickhouse"
	"AlbionPulse/pkg/config"
	pkghttp "AlbionPulse/pkg/http"
	pkgkafka "AlbionPulse/pkg/kafka"
	"AlbionPulse/pkg/logger"
	"AlbionPulse/pkg/metrics"
	"AlbionPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lc := &logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		if cfg.Environment == "production" {
			lc.Format = "json"
		} else {
			lc.Format = "console"
		}
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return logger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMarketStore creates the ClickHouse-backed store.
func ProvideMarketStore(chClient *pkgch.Client) repository.MarketStore {
	return internalrepo.NewClickHouseMarketStore(chClient.DB())
}

// ProvideKafkaProducer creates a Kafka producer. Nil when the write path
// goes straight to ClickHouse.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
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

// ProvidePublisher creates the Kafka publisher repository. Nil producer
// yields a nil publisher; the processor never touches it on the
// clickhouse backend.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.QuotesTopic, cfg.Kafka.GoldTopic)
}

// ProvideKafkaConsumer creates the consumer that drains the quote topics
// into ClickHouse. Nil when the backend writes directly.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaHandlers builds the per-topic message handlers.
func ProvideKafkaHandlers(store repository.MarketStore, m repository.Metrics, cfg *config.Config) []pkgkafka.MessageHandler {
	if cfg.Backend.Type != "kafka" {
		return nil
	}
	return []pkgkafka.MessageHandler{
		usecase.NewKafkaQuotesHandler(cfg.Kafka.QuotesTopic, store, m),
		usecase.NewKafkaGoldHandler(cfg.Kafka.GoldTopic, store, m),
	}
}

// ProvideCache creates the tiered cache: layered Redis+memory when Redis
// is configured, process-local memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxEntries)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("albionpulse"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MaxEntries)), nil
}

// ProvideTTLPolicy maps the configured tier durations; zero values fall
// back to the policy defaults.
func ProvideTTLPolicy(cfg *config.Config) cache.TTLPolicy {
	return cache.TTLPolicy{
		Volatile: cfg.Cache.VolatileTTL,
		Standard: cfg.Cache.StandardTTL,
		Stable:   cfg.Cache.StableTTL,
	}
}

// ProvideNormalizer creates the schema normalizer.
func ProvideNormalizer(log *logger.Logger) *normalize.Normalizer {
	return normalize.New(log)
}

// ProvideNames creates the display-name resolver.
func ProvideNames(c cache.Service, ttl cache.TTLPolicy) *usecase.NamesService {
	return usecase.NewNamesService(c, ttl)
}

// ProvidePriceAPI creates the rate-limited upstream price client.
func ProvidePriceAPI(cfg *config.Config, log *logger.Logger) usecase.PriceAPI {
	httpClient := pkghttp.NewClient(pkghttp.WithTimeout(cfg.Albion.RequestTimeout))
	return albion.New(
		httpClient,
		ratelimit.New(),
		cfg.Albion.PriceAPIURL,
		cfg.Albion.GoldAPIURL,
		cfg.Albion.Region,
		cfg.Albion.RateLimit,
		cfg.Albion.RateBurst,
		log,
	)
}

// ProvideMarketService creates the read-path service.
func ProvideMarketService(
	api usecase.PriceAPI,
	norm *normalize.Normalizer,
	c cache.Service,
	ttl cache.TTLPolicy,
	names *usecase.NamesService,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.MarketService {
	return usecase.NewMarketService(api, norm, c, ttl, names, m, log, cfg.Albion.Region, cfg.Outlier.Threshold)
}

// ProvideScannerEngine picks the scan engine, probing the accelerated one.
func ProvideScannerEngine(cfg *config.Config, log *logger.Logger) scanner.Engine {
	return scanner.Select(cfg.Scanner.Engine, log)
}

// ProvideScanParams maps the configured cost model.
func ProvideScanParams(cfg *config.Config) models.ScanParams {
	return models.ScanParams{
		SalesTaxRate:    cfg.Scanner.SalesTaxRate,
		SetupFeeRate:    cfg.Scanner.SetupFeeRate,
		TransportRate:   cfg.Scanner.TransportRate,
		DefaultDistance: cfg.Scanner.DefaultDistance,
		MinProfit:       cfg.Scanner.MinProfit,
		MinROI:          cfg.Scanner.MinROI,
		MaxResults:      cfg.Scanner.MaxResults,
	}
}

// ProvideFlipFinder creates the arbitrage use case.
func ProvideFlipFinder(market *usecase.MarketService, engine scanner.Engine, params models.ScanParams, m repository.Metrics, log *logger.Logger) *usecase.FlipFinder {
	return usecase.NewFlipFinder(market, engine, params, m, log)
}

// ProvideQuoteProcessor creates the write-path processor.
func ProvideQuoteProcessor(pub repository.Publisher, store repository.MarketStore, m repository.Metrics, cfg *config.Config) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideEventStream creates the push-feed WebSocket stream.
func ProvideEventStream(cfg *config.Config, log *logger.Logger) repository.EventStream {
	return ingest.NewStream(
		cfg.Ingest.WebSocketURL,
		cfg.Ingest.Topics,
		cfg.Ingest.ReconnectDelay,
		cfg.Ingest.PingInterval,
		log,
	)
}

// ProvideIngestAdapter connects the push feed to the quote processor.
func ProvideIngestAdapter(stream repository.EventStream, norm *normalize.Normalizer, processor *usecase.QuoteProcessor, m repository.Metrics, log *logger.Logger) *ingest.Adapter {
	return ingest.NewAdapter(stream, norm, processor, m, log)
}

// ProvideUpdater creates the periodic build-aggregation job.
func ProvideUpdater(store repository.MarketStore, names *usecase.NamesService, m repository.Metrics, log *logger.Logger, cfg *config.Config) *aggregate.Updater {
	return aggregate.New(store, names, m, log, cfg.Aggregation.Lookback, cfg.Aggregation.Interval)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(log *logger.Logger, market *usecase.MarketService, flips *usecase.FlipFinder, store repository.MarketStore) pkghttp.Handler {
	return api.NewMarketEchoHandler(log, market, flips, store)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	adapter *ingest.Adapter,
	updater *aggregate.Updater,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	httpHandler pkghttp.Handler,
	processor *usecase.QuoteProcessor,
) *server.App {
	return server.New(cfg, log, adapter, updater, consumer, handlers, chClient, httpHandler, processor)
}
