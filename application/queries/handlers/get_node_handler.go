package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	"stratgraph/application/services"
	"stratgraph/pkg/errors"
)

// GetNodeHandler handles single-node queries
type GetNodeHandler struct {
	graphRepo ports.GraphRepository
	examples  *services.ExampleService
	logger    *zap.Logger
}

// NewGetNodeHandler creates a new get node handler
func NewGetNodeHandler(graphRepo ports.GraphRepository, examples *services.ExampleService, logger *zap.Logger) *GetNodeHandler {
	return &GetNodeHandler{
		graphRepo: graphRepo,
		examples:  examples,
		logger:    logger,
	}
}

// Handle locates the node and optionally decorates it with connections and
// lazily generated examples
func (h *GetNodeHandler) Handle(ctx context.Context, query queries.GetNodeQuery) (*queries.NodeResult, error) {
	graph, err := h.graphRepo.GetByID(ctx, query.GraphID)
	if err != nil {
		return nil, err
	}

	located := graph.FindNode(query.NodeID)
	if located == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("node '%s'", query.NodeID))
	}

	result := &queries.NodeResult{
		Node:  located.Node,
		Path:  located.Path,
		Level: located.Level,
	}
	if query.WithConnections {
		result.Connections = graph.ConnectionsFor(query.NodeID)
	}
	if query.WithExamples {
		result.Examples = h.examples.EnsureExamples(ctx, located.Node)
	}
	return result, nil
}
