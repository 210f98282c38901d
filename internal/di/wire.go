//go:build wireinject
// +build wireinject

package di

import (
	"BotBourse/pkg/config"
	"BotBourse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Repositories (with business logic)
		ProvideQuoteStorage,
		ProvideQuotePublisher,
		ProvideQuoteStream,
		ProvideMarketStore,

		// Use cases
		ProvideQuoteProcessor,
		ProvideQuoteCollector,
		ProvideKafkaQuotesHandler,
		ProvideSnapshotService,
		ProvideRegimeDetector,
		ProvideAnalyticsUseCase,
		ProvideCandlesUseCase,
		ProvideRedisQueue,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
