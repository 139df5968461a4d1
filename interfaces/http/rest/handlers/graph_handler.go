package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/commands/bus"
	"stratgraph/application/ports"
	"stratgraph/application/queries"
	querybus "stratgraph/application/queries/bus"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/common"
	apperrors "stratgraph/pkg/errors"
)

// GraphHandler handles graph-related HTTP requests
type GraphHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	graphRepo  ports.GraphRepository
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	graphRepo ports.GraphRepository,
	errors *apperrors.ErrorHandler,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		graphRepo:  graphRepo,
		errors:     errors,
		logger:     logger,
	}
}

// GetGraph handles GET /graphs/{graphID}. Supports ?maxLayer= to prune deep
// layers and ?withConnections=true to include cross-links.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("graph ID is required"))
		return
	}

	query := queries.GetGraphQuery{
		GraphID:         graphID,
		WithConnections: r.URL.Query().Get("withConnections") == "true",
	}
	if raw := r.URL.Query().Get("maxLayer"); raw != "" {
		maxLayer, err := strconv.Atoi(raw)
		if err != nil || maxLayer < 0 {
			h.errors.Handle(w, r, apperrors.NewValidationError("maxLayer must be a non-negative integer"))
			return
		}
		query.MaxLayer = &maxLayer
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// FilterGraph handles GET /graphs/{graphID}/filtered. ?minRelevance= sets
// the threshold; omitted it falls back to the default.
func (h *GraphHandler) FilterGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("graph ID is required"))
		return
	}

	query := queries.FilterGraphQuery{GraphID: graphID}
	if raw := r.URL.Query().Get("minRelevance"); raw != "" {
		minRelevance, err := strconv.Atoi(raw)
		if err != nil {
			h.errors.Handle(w, r, apperrors.NewValidationError("minRelevance must be an integer"))
			return
		}
		query.MinRelevance = &minRelevance
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

type updateGraphRequest struct {
	UserID      string                `json:"user_id"`
	Graph       *entities.GraphNode   `json:"graph"`
	Connections []entities.Connection `json:"connections,omitempty"`
}

// UpdateGraph handles PUT /graphs/{graphID}. The whole tree is replaced;
// last write wins.
func (h *GraphHandler) UpdateGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("graph ID is required"))
		return
	}

	var req updateGraphRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	if req.Graph == nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("graph is required"))
		return
	}

	cmd := commands.UpdateGraphCommand{
		GraphID:     graphID,
		UserID:      req.UserID,
		Root:        req.Graph,
		Connections: req.Connections,
	}

	if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"graph_id": graphID, "status": "updated"})
}

// GetGraphByQuery handles GET /queries/{queryID}/graph
func (h *GraphHandler) GetGraphByQuery(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")
	if queryID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("query ID is required"))
		return
	}

	graph, err := h.graphRepo.GetByQueryID(r.Context(), queryID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, queries.GraphResult{
		GraphID:     graph.ID(),
		QueryID:     graph.QueryID(),
		Root:        graph.Root(),
		Connections: graph.Connections(),
		NodeCount:   graph.NodeCount(),
	})
}
