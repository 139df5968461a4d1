package queries

import (
	"errors"

	"stratgraph/domain/core/entities"
)

// GetNodeQuery represents a query for one node of a graph with its position
// and optional extras
type GetNodeQuery struct {
	GraphID         string `json:"graph_id"`
	NodeID          string `json:"node_id"`
	WithConnections bool   `json:"with_connections,omitempty"`
	WithExamples    bool   `json:"with_examples,omitempty"`
}

// Validate validates the query
func (q GetNodeQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphID is required")
	}
	if q.NodeID == "" {
		return errors.New("nodeID is required")
	}
	return nil
}

// NodeResult is the rendered node payload
type NodeResult struct {
	Node        *entities.GraphNode   `json:"node"`
	Path        []*entities.GraphNode `json:"path"`
	Level       int                   `json:"level"`
	Connections []entities.Connection `json:"connections,omitempty"`
	Examples    []entities.Example    `json:"examples,omitempty"`
}
