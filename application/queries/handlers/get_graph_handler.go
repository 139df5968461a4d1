package handlers

import (
	"context"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/errors"
)

// GetGraphHandler handles graph retrieval queries
type GetGraphHandler struct {
	graphRepo ports.GraphRepository
	logger    *zap.Logger
}

// NewGetGraphHandler creates a new get graph handler
func NewGetGraphHandler(graphRepo ports.GraphRepository, logger *zap.Logger) *GetGraphHandler {
	return &GetGraphHandler{
		graphRepo: graphRepo,
		logger:    logger,
	}
}

// Handle loads the graph and applies the optional layer filter. A filter
// that rejects the root yields NotFound rather than an empty payload.
func (h *GetGraphHandler) Handle(ctx context.Context, query queries.GetGraphQuery) (*queries.GraphResult, error) {
	graph, err := h.graphRepo.GetByID(ctx, query.GraphID)
	if err != nil {
		return nil, err
	}

	root := graph.Root()
	if query.MaxLayer != nil {
		root = entities.FilterByMaxLayer(root, *query.MaxLayer)
		if root == nil {
			return nil, errors.NewNotFoundError("graph content at requested layer")
		}
	}

	result := &queries.GraphResult{
		GraphID:   graph.ID(),
		QueryID:   graph.QueryID(),
		Root:      root,
		NodeCount: root.Count(),
	}
	if query.WithConnections {
		result.Connections = graph.Connections()
	}
	return result, nil
}
