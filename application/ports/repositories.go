package ports

import (
	"context"

	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/domain/events"
)

// GraphRepository defines the interface for graph persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type GraphRepository interface {
	// Save persists a graph (create or update, last write wins)
	Save(ctx context.Context, graph *aggregates.Graph) error

	// GetByID retrieves a graph by its ID
	GetByID(ctx context.Context, id string) (*aggregates.Graph, error)

	// GetByQueryID retrieves the graph produced by a query
	GetByQueryID(ctx context.Context, queryID string) (*aggregates.Graph, error)

	// GetByUserID retrieves all graphs for a user
	GetByUserID(ctx context.Context, userID string) ([]*aggregates.Graph, error)

	// Delete removes a graph
	Delete(ctx context.Context, id string) error
}

// QueryRepository defines the interface for query record persistence
type QueryRepository interface {
	// Save persists a query record (create or update)
	Save(ctx context.Context, query *entities.Query) error

	// GetByID retrieves a query by its ID
	GetByID(ctx context.Context, id string) (*entities.Query, error)

	// GetByUserID retrieves all queries for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.Query, error)
}

// DocumentRepository defines the interface for source document persistence
type DocumentRepository interface {
	// Save persists a document (create or update)
	Save(ctx context.Context, doc *entities.Document) error

	// GetByID retrieves a document by its ID
	GetByID(ctx context.Context, id string) (*entities.Document, error)

	// List retrieves all documents
	List(ctx context.Context) ([]*entities.Document, error)

	// Delete removes a document
	Delete(ctx context.Context, id string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every cached value whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
