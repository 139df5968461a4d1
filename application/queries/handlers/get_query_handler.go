package handlers

import (
	"context"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	"stratgraph/domain/core/entities"
)

// GetQueryStatusHandler handles query-status lookups
type GetQueryStatusHandler struct {
	queryRepo ports.QueryRepository
	logger    *zap.Logger
}

// NewGetQueryStatusHandler creates a new query status handler
func NewGetQueryStatusHandler(queryRepo ports.QueryRepository, logger *zap.Logger) *GetQueryStatusHandler {
	return &GetQueryStatusHandler{
		queryRepo: queryRepo,
		logger:    logger,
	}
}

// Handle returns the query record
func (h *GetQueryStatusHandler) Handle(ctx context.Context, query queries.GetQueryStatusQuery) (*entities.Query, error) {
	return h.queryRepo.GetByID(ctx, query.QueryID)
}
