package di

import (
	"context"
	"fmt"
	"time"

	"OddsEngine/internal/bankroll"
	"OddsEngine/internal/domain/repository"
	"OddsEngine/internal/engine/ensemble"
	"OddsEngine/internal/engine/factors"
	"OddsEngine/internal/engine/live"
	"OddsEngine/internal/engine/poisson"
	"OddsEngine/internal/engine/value"
	"OddsEngine/internal/handler/api"
	mid "OddsEngine/internal/middleware"
	internalrepo "OddsEngine/internal/repository"
	"OddsEngine/internal/service/livefeed"
	"OddsEngine/internal/usecase"
	"OddsEngine/pkg/cache"
	pkgch "OddsEngine/pkg/clickhouse"
	"OddsEngine/pkg/config"
	pkgkafka "OddsEngine/pkg/kafka"
	applogger "OddsEngine/pkg/logger"
	"OddsEngine/pkg/metrics"
	"OddsEngine/pkg/server"
)

// ProvideLogger creates the application logger. Development environments
// get console output, everything else JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when
// persistence is disabled in config.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, false),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideHistoryStore creates the prediction history store on ClickHouse
// and initializes its schema. Nil client means history is disabled.
func ProvideHistoryStore(chClient *pkgch.Client, l *applogger.Logger) (repository.HistoryStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseHistoryStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers
// are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.ProducerBatchSize),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideOpportunityPublisher creates the Kafka opportunity publisher.
func ProvideOpportunityPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.OpportunityPublisher {
	if producer == nil || cfg.Kafka.OpportunityTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaOpportunityPublisher(producer, cfg.Kafka.OpportunityTopic)
}

// ProvideRedisCache creates a Redis cache client, or nil when Redis is
// disabled in config.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("oddsengine"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideDedupStore picks the signal dedup backend. Redis when available,
// process memory otherwise. Memory dedup does not survive restarts, which
// is acceptable for a single-instance deployment.
func ProvideDedupStore(rc *cache.RedisCache) repository.DedupStore {
	if rc != nil {
		return internalrepo.NewRedisDedupStore(rc)
	}
	return internalrepo.NewMemoryDedupStore()
}

// ProvideResponseCache builds the Predict response cache. Layered over
// Redis when it is enabled so restarts keep warm entries, in-process
// memory otherwise.
func ProvideResponseCache(rc *cache.RedisCache) cache.Service {
	if rc != nil {
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(1000))
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(1000))
}

// ProvideAggregator creates the factor aggregator.
func ProvideAggregator(cfg *config.Config) *factors.Aggregator {
	return factors.New(cfg.Engine.LeagueAvgHomeGoals, cfg.Engine.LeagueAvgAwayGoals)
}

// ProvidePoissonModel creates the scoreline model.
func ProvidePoissonModel(cfg *config.Config) *poisson.Model {
	return poisson.New(cfg.Engine.LeagueAvgHomeGoals, cfg.Engine.LeagueAvgAwayGoals)
}

// ProvideEnsembleScorer creates the ensemble scorer from config weights.
func ProvideEnsembleScorer(cfg *config.Config) (*ensemble.Scorer, error) {
	return ensemble.New(ensemble.Config{
		FormWeight:             cfg.Engine.Weights.Form,
		H2HWeight:              cfg.Engine.Weights.H2H,
		StatsWeight:            cfg.Engine.Weights.Stats,
		StandingsWeight:        cfg.Engine.Weights.Standings,
		MotivationWeight:       cfg.Engine.Weights.Motivation,
		PoissonWeight:          cfg.Engine.PoissonWeight,
		MinConfidenceThreshold: cfg.Engine.MinConfidenceThreshold,
		MinH2HMatches:          cfg.Engine.MinH2HMatches,
	})
}

// ProvideValueDetector creates the value bet detector.
func ProvideValueDetector(cfg *config.Config) *value.Detector {
	return value.New(value.Config{
		MinValueThreshold:   cfg.Value.MinValueThreshold,
		HighEdgeThreshold:   cfg.Value.HighEdgeThreshold,
		StrongEdgeThreshold: cfg.Value.StrongEdgeThreshold,
		MaxPlausibleEdge:    cfg.Value.MaxPlausibleEdge,
	})
}

// ProvideKellyConfig maps staking limits from config.
func ProvideKellyConfig(cfg *config.Config) value.KellyConfig {
	return value.KellyConfig{
		Fraction:         cfg.Value.KellyFraction,
		MaxBetPercentage: cfg.Value.MaxBetPercentage,
		MaxSingleBet:     cfg.Value.MaxSingleBet,
		MaxPlausibleEdge: cfg.Value.MaxPlausibleEdge,
	}
}

// ProvidePredictor creates the pre-match prediction use case.
func ProvidePredictor(
	agg *factors.Aggregator,
	model *poisson.Model,
	scorer *ensemble.Scorer,
	detector *value.Detector,
	history repository.HistoryStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Predictor {
	return usecase.NewPredictor(agg, model, scorer, detector, history, m, l)
}

// ProvideBatchScorer creates the rate-limited batch scorer.
func ProvideBatchScorer(pred *usecase.Predictor, cfg *config.Config, l *applogger.Logger) *usecase.BatchScorer {
	return usecase.NewBatchScorer(pred, cfg.Batch.Concurrency, cfg.Batch.BatchDelay, cfg.Batch.SourceRPS, l)
}

// ProvideScanner creates the live signal scanner from config thresholds.
func ProvideScanner(cfg *config.Config, dedup repository.DedupStore, l *applogger.Logger) *live.Scanner {
	return live.NewScanner(live.Config{
		MinMinute:        cfg.Live.MinMinute,
		ShotPressureDiff: cfg.Live.ShotPressureDiff,
		PossessionShare:  cfg.Live.PossessionShare,
		AggressionCards:  cfg.Live.AggressionCards,
		CornerPressure:   cfg.Live.CornerPressure,
		MomentumShots:    cfg.Live.MomentumShots,
		GoalExpectancy:   cfg.Live.GoalExpectancy,
		DedupeCooldown:   cfg.Live.DedupeCooldown,
	}, dedup, l)
}

// ProvideTickProcessor creates the tick processing use case.
func ProvideTickProcessor(
	scanner *live.Scanner,
	pub repository.OpportunityPublisher,
	history repository.HistoryStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(scanner, pub, history, m, l)
}

// ProvideLiveStream creates the WebSocket stats feed, or nil when the feed
// is disabled.
func ProvideLiveStream(cfg *config.Config, l *applogger.Logger) repository.LiveStream {
	if !cfg.Feed.Enabled {
		return nil
	}
	return livefeed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Fixtures,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		l,
	)
}

// ProvideLiveCollector creates the feed collector, or nil when there is no
// stream to collect from.
func ProvideLiveCollector(
	stream repository.LiveStream,
	proc *usecase.TickProcessor,
	m repository.Metrics,
) *usecase.LiveCollector {
	if stream == nil {
		return nil
	}
	// Buffer between WebSocket and downstream so a slow sink cannot stall
	// the read loop.
	pipe := mid.NewTickPipeline(proc, m,
		mid.WithMaxRPS(4),
		mid.WithBufferSize(1000),
	)
	return usecase.NewLiveCollector(stream, proc, m, pipe)
}

// ProvideKafkaConsumer creates a Kafka consumer for the ticks topic, or nil
// when no consumer group is configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Consumer.GroupID == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers tick processing for the ticks topic.
func ProvideKafkaTicksHandler(proc *usecase.TickProcessor, m repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	if cfg.Kafka.TicksTopic == "" {
		return nil
	}
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TicksTopic, proc, m)
}

// ProvideLedger creates the bankroll ledger.
func ProvideLedger(cfg *config.Config, l *applogger.Logger) repository.LedgerStore {
	return bankroll.New(bankroll.Config{
		InitialBalance: cfg.Bankroll.InitialBalance,
		DailyStakeCap:  cfg.Bankroll.DailyStakeCap,
		MaxOpenBets:    cfg.Bankroll.MaxOpenBets,
	}, l)
}

// ProvideEngineHandler creates the Echo API handler.
func ProvideEngineHandler(
	l *applogger.Logger,
	pred *usecase.Predictor,
	batch *usecase.BatchScorer,
	model *poisson.Model,
	kellyCfg value.KellyConfig,
	ledger repository.LedgerStore,
	collector *usecase.LiveCollector,
	history repository.HistoryStore,
	respCache cache.Service,
) *api.EngineEchoHandler {
	h := api.NewEngineEchoHandler(l, pred, batch, model, kellyCfg, ledger)
	if collector != nil {
		h.SetCollector(collector)
	}
	if history != nil {
		h.SetHistory(history)
	}
	h.SetCache(respCache)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.LiveCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	proc *usecase.TickProcessor,
	chClient *pkgch.Client,
	handler *api.EngineEchoHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}
	app := server.New(cfg, l, collector, consumer, mh, chClient)
	app.SetHTTPHandler(handler)
	app.TickProc = proc
	return app
}
