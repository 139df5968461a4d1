package queries

import (
	"errors"
	"strconv"

	"stratgraph/domain/core/entities"
)

// GraphCacheKeyPrefix is the shared key prefix for every cached read of one
// graph. Writers invalidate by this prefix after an update.
func GraphCacheKeyPrefix(graphID string) string {
	return "graph:" + graphID + ":"
}

// GetGraphQuery represents a query for one graph, optionally filtered by a
// maximum layer
type GetGraphQuery struct {
	GraphID         string `json:"graph_id"`
	MaxLayer        *int   `json:"max_layer,omitempty"`
	WithConnections bool   `json:"with_connections,omitempty"`
}

// Validate validates the query
func (q GetGraphQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphID is required")
	}
	if q.MaxLayer != nil && *q.MaxLayer < 0 {
		return errors.New("maxLayer must be non-negative")
	}
	return nil
}

// CacheKey builds the cache key from dereferenced values so that equal
// queries share an entry regardless of pointer identity
func (q GetGraphQuery) CacheKey() string {
	layer := "all"
	if q.MaxLayer != nil {
		layer = strconv.Itoa(*q.MaxLayer)
	}
	return GraphCacheKeyPrefix(q.GraphID) + "get:layer=" + layer + ":conn=" + strconv.FormatBool(q.WithConnections)
}

// GraphResult is the rendered graph payload
type GraphResult struct {
	GraphID     string                `json:"graph_id"`
	QueryID     string                `json:"query_id,omitempty"`
	Root        *entities.GraphNode   `json:"graph"`
	Connections []entities.Connection `json:"connections,omitempty"`
	NodeCount   int                   `json:"node_count"`
}
