//go:build wireinject
// +build wireinject

package di

import (
	"OddsEngine/pkg/config"
	"OddsEngine/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,

		// Repositories
		ProvideHistoryStore,
		ProvideOpportunityPublisher,
		ProvideDedupStore,
		ProvideResponseCache,
		ProvideLedger,

		// Engine
		ProvideAggregator,
		ProvidePoissonModel,
		ProvideEnsembleScorer,
		ProvideValueDetector,
		ProvideKellyConfig,
		ProvideScanner,

		// Use cases
		ProvidePredictor,
		ProvideBatchScorer,
		ProvideTickProcessor,
		ProvideLiveStream,
		ProvideLiveCollector,
		ProvideKafkaConsumer,
		ProvideKafkaTicksHandler,

		// HTTP surface and application server
		ProvideEngineHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
