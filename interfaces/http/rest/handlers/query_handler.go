package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/commands/bus"
	commands_handlers "stratgraph/application/commands/handlers"
	"stratgraph/application/ports"
	"stratgraph/application/queries"
	querybus "stratgraph/application/queries/bus"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/common"
	apperrors "stratgraph/pkg/errors"
)

const maxRequestBody = 1 << 20 // 1 MiB

// QueryHandler handles synthesis requests and status lookups
type QueryHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	queryRepo  ports.QueryRepository
	validate   *validator.Validate
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, queryRepo ports.QueryRepository, errors *apperrors.ErrorHandler, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		queryRepo:  queryRepo,
		validate:   validator.New(),
		errors:     errors,
		logger:     logger,
	}
}

type createQueryRequest struct {
	UserID  string                  `json:"user_id"`
	Query   string                  `json:"query" validate:"required,max=2000"`
	Context *entities.ContextParams `json:"context,omitempty"`
}

type createQueryResponse struct {
	QueryID     string                `json:"query_id"`
	Status      string                `json:"status"`
	GraphID     string                `json:"graph_id,omitempty"`
	Graph       *entities.GraphNode   `json:"graph,omitempty"`
	Connections []entities.Connection `json:"connections,omitempty"`
}

// CreateQuery handles POST /queries. Synthesis runs inline; the response
// carries the finished graph along with the query record.
func (h *QueryHandler) CreateQuery(w http.ResponseWriter, r *http.Request) {
	var req createQueryRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.SynthesizeGraphCommand{
		UserID:        req.UserID,
		QueryText:     req.Query,
		ContextParams: req.Context,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	synthesis, ok := result.(*commands_handlers.SynthesisResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected synthesis result type"))
		return
	}

	common.RespondJSON(w, http.StatusCreated, createQueryResponse{
		QueryID:     synthesis.Query.ID,
		Status:      string(synthesis.Query.Status),
		GraphID:     synthesis.Query.GraphID,
		Graph:       synthesis.Graph.Root(),
		Connections: synthesis.Graph.Connections(),
	})
}

// GetQuery handles GET /queries/{queryID}
func (h *QueryHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")
	if queryID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("query ID is required"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetQueryStatusQuery{QueryID: queryID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListQueries handles GET /queries?user_id=
func (h *QueryHandler) ListQueries(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("user_id is required"))
		return
	}

	result, err := h.queryRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
