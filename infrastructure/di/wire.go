//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"stratgraph/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideGraphRepository,
	ProvideQueryRepository,
	ProvideDocumentRepository,
	ProvideEventPublisher,
	ProvideOpenAIClient,
	ProvideCompleter,
	ProvideEmbedder,
	ProvideChunkIndex,
	ProvideRetriever,
	ProvideDocumentIndexer,
	ProvideContextBuilder,
	ProvideSynthesizer,
	ProvideExampleService,
	ProvideNodeChatService,
	ProvideQuizService,
	ProvideInMemoryCache,
	ProvideMetrics,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
