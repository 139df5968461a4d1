package handlers

import (
	"context"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/errors"
)

// FilterGraphHandler handles relevance-filter queries
type FilterGraphHandler struct {
	graphRepo ports.GraphRepository
	logger    *zap.Logger
}

// NewFilterGraphHandler creates a new filter graph handler
func NewFilterGraphHandler(graphRepo ports.GraphRepository, logger *zap.Logger) *FilterGraphHandler {
	return &FilterGraphHandler{
		graphRepo: graphRepo,
		logger:    logger,
	}
}

// Handle loads the graph and returns a copy pruned below the relevance
// threshold
func (h *FilterGraphHandler) Handle(ctx context.Context, query queries.FilterGraphQuery) (*queries.GraphResult, error) {
	graph, err := h.graphRepo.GetByID(ctx, query.GraphID)
	if err != nil {
		return nil, err
	}

	threshold := entities.DefaultMinRelevance
	if query.MinRelevance != nil {
		threshold = *query.MinRelevance
	}

	root := entities.FilterByMinRelevance(graph.Root(), threshold)
	if root == nil {
		return nil, errors.NewNotFoundError("graph content at requested relevance")
	}

	return &queries.GraphResult{
		GraphID:   graph.ID(),
		QueryID:   graph.QueryID(),
		Root:      root,
		NodeCount: root.Count(),
	}, nil
}
