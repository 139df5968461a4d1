package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/ports"
	"stratgraph/application/services"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/domain/events"
)

// SynthesisResult is what a successful synthesis command returns: the query
// record and the graph it produced.
type SynthesisResult struct {
	Query *entities.Query
	Graph *aggregates.Graph
}

// SynthesizeGraphHandler handles graph synthesis commands
type SynthesizeGraphHandler struct {
	queryRepo   ports.QueryRepository
	graphRepo   ports.GraphRepository
	synthesizer *services.Synthesizer
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewSynthesizeGraphHandler creates a new synthesize graph handler
func NewSynthesizeGraphHandler(
	queryRepo ports.QueryRepository,
	graphRepo ports.GraphRepository,
	synthesizer *services.Synthesizer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *SynthesizeGraphHandler {
	return &SynthesizeGraphHandler{
		queryRepo:   queryRepo,
		graphRepo:   graphRepo,
		synthesizer: synthesizer,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the synthesize graph command. The query record moves
// through processing to completed or failed; synthesis itself cannot fail
// (it degrades to the fallback tree), so failures here are persistence or
// graph construction problems.
func (h *SynthesizeGraphHandler) Handle(ctx context.Context, cmd commands.SynthesizeGraphCommand) (*SynthesisResult, error) {
	now := time.Now()
	query := &entities.Query{
		ID:            uuid.New().String(),
		UserID:        cmd.UserID,
		Text:          cmd.QueryText,
		ContextParams: cmd.ContextParams,
		Status:        entities.QueryStatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.queryRepo.Save(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create query record: %w", err)
	}

	root, connections := h.synthesizer.Synthesize(ctx, cmd.QueryText, cmd.ContextParams)

	graph, err := aggregates.NewGraph(query.ID, cmd.UserID, root, connections)
	if err != nil {
		h.failQuery(ctx, query, err)
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	if err := h.graphRepo.Save(ctx, graph); err != nil {
		h.failQuery(ctx, query, err)
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	query.Status = entities.QueryStatusCompleted
	query.GraphID = graph.ID()
	query.UpdatedAt = time.Now()
	if err := h.queryRepo.Save(ctx, query); err != nil {
		// Graph exists; the stale query status is recoverable on re-read.
		h.logger.Error("Failed to mark query completed",
			zap.String("queryID", query.ID),
			zap.Error(err))
	}

	event := events.NewGraphGenerated(graph.ID(), query.ID, cmd.UserID, graph.NodeCount(), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish graph generated event",
			zap.String("graphID", graph.ID()),
			zap.Error(err))
	}

	h.logger.Info("Graph synthesized",
		zap.String("queryID", query.ID),
		zap.String("graphID", graph.ID()),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("connections", len(graph.Connections())))

	return &SynthesisResult{Query: query, Graph: graph}, nil
}

func (h *SynthesizeGraphHandler) failQuery(ctx context.Context, query *entities.Query, cause error) {
	query.Status = entities.QueryStatusFailed
	query.UpdatedAt = time.Now()
	if err := h.queryRepo.Save(ctx, query); err != nil {
		h.logger.Error("Failed to mark query failed",
			zap.String("queryID", query.ID),
			zap.Error(err))
	}

	event := events.NewQueryFailed(query.ID, query.UserID, cause.Error(), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish query failed event",
			zap.String("queryID", query.ID),
			zap.Error(err))
	}
}
