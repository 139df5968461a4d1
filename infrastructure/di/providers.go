package di

import (
	"context"
	"fmt"

	"stratgraph/application/commands"
	"stratgraph/application/commands/bus"
	commands_handlers "stratgraph/application/commands/handlers"
	"stratgraph/application/ports"
	"stratgraph/application/queries"
	querybus "stratgraph/application/queries/bus"
	queries_handlers "stratgraph/application/queries/handlers"
	"stratgraph/application/services"
	"stratgraph/infrastructure/config"
	"stratgraph/infrastructure/llm/openai"
	"stratgraph/infrastructure/messaging/eventbridge"
	"stratgraph/infrastructure/persistence/dynamodb"
	"stratgraph/infrastructure/search/sqlitevec"
	"stratgraph/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideGraphRepository creates a graph repository
func ProvideGraphRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GraphRepository {
	return dynamodb.NewGraphRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideQueryRepository creates a query repository
func ProvideQueryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.QueryRepository {
	return dynamodb.NewQueryRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideDocumentRepository creates a document repository
func ProvideDocumentRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DocumentRepository {
	return dynamodb.NewDocumentRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideEventPublisher creates an EventBridge-backed event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideOpenAIClient creates the OpenAI API client
func ProvideOpenAIClient(cfg *config.Config, logger *zap.Logger) (*openai.Client, error) {
	return openai.NewClient(cfg, logger)
}

// ProvideCompleter exposes the OpenAI client as a text generator
func ProvideCompleter(client *openai.Client) ports.Completer {
	return client
}

// ProvideEmbedder exposes the OpenAI client as an embedder
func ProvideEmbedder(client *openai.Client) ports.Embedder {
	return client
}

// ProvideChunkIndex opens the local vector index
func ProvideChunkIndex(cfg *config.Config, embedder ports.Embedder, logger *zap.Logger) (*sqlitevec.Index, error) {
	return sqlitevec.Open(cfg.VectorDBPath, embedder, logger)
}

// ProvideRetriever exposes the chunk index as a retriever
func ProvideRetriever(index *sqlitevec.Index) ports.Retriever {
	return index
}

// ProvideDocumentIndexer exposes the chunk index as a document indexer
func ProvideDocumentIndexer(index *sqlitevec.Index) ports.DocumentIndexer {
	return index
}

// ProvideContextBuilder creates the retrieval context builder
func ProvideContextBuilder(retriever ports.Retriever, logger *zap.Logger) *services.ContextBuilder {
	return services.NewContextBuilder(retriever, logger)
}

// ProvideSynthesizer creates the graph synthesizer
func ProvideSynthesizer(completer ports.Completer, builder *services.ContextBuilder, logger *zap.Logger) *services.Synthesizer {
	return services.NewSynthesizer(completer, builder, logger)
}

// ProvideExampleService creates the node example service
func ProvideExampleService(completer ports.Completer, logger *zap.Logger) *services.ExampleService {
	return services.NewExampleService(completer, logger)
}

// ProvideNodeChatService creates the node chat service
func ProvideNodeChatService(completer ports.Completer, retriever ports.Retriever, logger *zap.Logger) *services.NodeChatService {
	return services.NewNodeChatService(completer, retriever, logger)
}

// ProvideQuizService creates the quiz service
func ProvideQuizService(completer ports.Completer, logger *zap.Logger) *services.QuizService {
	return services.NewQuizService(completer, logger)
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production with multiple instances this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideMetrics creates the query bus metrics sink. Disabled metrics get a
// no-op sink so callers never branch.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) querybus.Metrics {
	if !cfg.EnableMetrics {
		return metricsAdapter{inner: observability.NoopMetrics{}}
	}
	namespace := fmt.Sprintf("StratGraph/%s", cfg.Environment)
	return metricsAdapter{inner: observability.NewMetrics(namespace, client, logger)}
}

// metricsAdapter bridges the observability metrics types to the query bus
// interfaces, which name their own Timer type.
type metricsAdapter struct {
	inner interface {
		Increment(metric, label string)
		StartTimer(metric, label string) observability.Timer
	}
}

func (a metricsAdapter) Increment(metric, label string) {
	a.inner.Increment(metric, label)
}

func (a metricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.inner.StartTimer(metric, label)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) (interface{}, error)
}

// Handle implements bus.CommandHandler
func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	queryRepo ports.QueryRepository,
	graphRepo ports.GraphRepository,
	docRepo ports.DocumentRepository,
	indexer ports.DocumentIndexer,
	synthesizer *services.Synthesizer,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(&zapLoggerAdapter{logger}))

	synthesizeHandler := commands_handlers.NewSynthesizeGraphHandler(queryRepo, graphRepo, synthesizer, publisher, logger)
	commandBus.Register(commands.SynthesizeGraphCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			synthesizeCmd, ok := cmd.(commands.SynthesizeGraphCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return synthesizeHandler.Handle(ctx, synthesizeCmd)
		},
	}))

	updateHandler := commands_handlers.NewUpdateGraphHandler(graphRepo, cache, logger)
	commandBus.Register(commands.UpdateGraphCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			updateCmd, ok := cmd.(commands.UpdateGraphCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return nil, updateHandler.Handle(ctx, updateCmd)
		},
	}))

	ingestHandler := commands_handlers.NewIngestDocumentHandler(docRepo, indexer, publisher, cfg.ChunkSize, cfg.ChunkOverlap, logger)
	commandBus.Register(commands.IngestDocumentCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			ingestCmd, ok := cmd.(commands.IngestDocumentCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return ingestHandler.Handle(ctx, ingestCmd)
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

// Handle implements querybus.QueryHandler
func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers. Graph reads
// are cached; status polls and document listings are not.
func ProvideQueryBus(
	graphRepo ports.GraphRepository,
	queryRepo ports.QueryRepository,
	docRepo ports.DocumentRepository,
	exampleService *services.ExampleService,
	cache ports.Cache,
	metrics querybus.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	caching := querybus.NewCachingMiddleware(cache, cfg.GraphCacheTTL)
	instrumented := querybus.NewMetricsMiddleware(metrics)

	getGraphHandler := queries_handlers.NewGetGraphHandler(graphRepo, logger)
	queryBus.Register(queries.GetGraphQuery{}, instrumented.Wrap(caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getGraphHandler.Handle(ctx, getQuery)
		},
	})))

	filterHandler := queries_handlers.NewFilterGraphHandler(graphRepo, logger)
	queryBus.Register(queries.FilterGraphQuery{}, instrumented.Wrap(caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			filterQuery, ok := query.(queries.FilterGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return filterHandler.Handle(ctx, filterQuery)
		},
	})))

	getNodeHandler := queries_handlers.NewGetNodeHandler(graphRepo, exampleService, logger)
	queryBus.Register(queries.GetNodeQuery{}, instrumented.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			nodeQuery, ok := query.(queries.GetNodeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getNodeHandler.Handle(ctx, nodeQuery)
		},
	}))

	statusHandler := queries_handlers.NewGetQueryStatusHandler(queryRepo, logger)
	queryBus.Register(queries.GetQueryStatusQuery{}, instrumented.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			statusQuery, ok := query.(queries.GetQueryStatusQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statusHandler.Handle(ctx, statusQuery)
		},
	}))

	listDocsHandler := queries_handlers.NewListDocumentsHandler(docRepo, logger)
	queryBus.Register(queries.ListDocumentsQuery{}, instrumented.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListDocumentsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listDocsHandler.Handle(ctx, listQuery)
		},
	}))

	return queryBus
}

// zapLoggerAdapter adapts zap.Logger to the command bus Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(keysAndValues...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(keysAndValues ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		zapFields = append(zapFields, zap.Any(key, keysAndValues[i+1]))
	}
	return zapFields
}
