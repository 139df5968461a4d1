package di

import (
	"go.uber.org/zap"

	"stratgraph/application/commands/bus"
	"stratgraph/application/ports"
	querybus "stratgraph/application/queries/bus"
	"stratgraph/application/services"
	"stratgraph/infrastructure/config"
	"stratgraph/infrastructure/search/sqlitevec"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	GraphRepo    ports.GraphRepository
	QueryRepo    ports.QueryRepository
	DocumentRepo ports.DocumentRepository
	ChunkIndex   *sqlitevec.Index
	Publisher    ports.EventPublisher
	Cache        ports.Cache
	NodeChat     *services.NodeChatService
	Quiz         *services.QuizService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// Close releases resources held by the container
func (c *Container) Close() error {
	if c.ChunkIndex != nil {
		return c.ChunkIndex.Close()
	}
	return nil
}
