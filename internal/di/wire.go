//go:build wireinject
// +build wireinject

package di

import (
	"AlbionPulse/pkg/config"
	"AlbionPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideTTLPolicy,

		// Repositories
		ProvideMarketStore,
		ProvidePublisher,
		ProvideEventStream,
		ProvidePriceAPI,

		// Use cases
		ProvideNormalizer,
		ProvideNames,
		ProvideMarketService,
		ProvideScannerEngine,
		ProvideScanParams,
		ProvideFlipFinder,
		ProvideQuoteProcessor,
		ProvideKafkaHandlers,
		ProvideIngestAdapter,
		ProvideUpdater,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
