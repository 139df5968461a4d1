package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/ports"
	"stratgraph/application/queries"
)

// UpdateGraphHandler handles graph update commands
type UpdateGraphHandler struct {
	graphRepo ports.GraphRepository
	cache     ports.Cache
	logger    *zap.Logger
}

// NewUpdateGraphHandler creates a new update graph handler
func NewUpdateGraphHandler(graphRepo ports.GraphRepository, cache ports.Cache, logger *zap.Logger) *UpdateGraphHandler {
	return &UpdateGraphHandler{
		graphRepo: graphRepo,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the update graph command
func (h *UpdateGraphHandler) Handle(ctx context.Context, cmd commands.UpdateGraphCommand) error {
	graph, err := h.graphRepo.GetByID(ctx, cmd.GraphID)
	if err != nil {
		return err
	}

	if cmd.UserID != "" && graph.UserID() != "" && graph.UserID() != cmd.UserID {
		return fmt.Errorf("graph does not belong to user")
	}

	if err := graph.ReplaceRoot(cmd.Root, cmd.Connections); err != nil {
		return fmt.Errorf("invalid replacement tree: %w", err)
	}

	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}

	// Cached reads of this graph now describe the old tree.
	if err := h.cache.DeletePrefix(ctx, queries.GraphCacheKeyPrefix(cmd.GraphID)); err != nil {
		h.logger.Warn("Failed to invalidate cached graph reads",
			zap.String("graphID", cmd.GraphID),
			zap.Error(err))
	}

	h.logger.Info("Graph updated",
		zap.String("graphID", cmd.GraphID),
		zap.Int("nodes", graph.NodeCount()))
	return nil
}
