package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	querybus "stratgraph/application/queries/bus"
	"stratgraph/application/services"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/common"
	apperrors "stratgraph/pkg/errors"
)

// NodeHandler handles node-level HTTP requests: lookup, chat, quiz and
// suggested questions
type NodeHandler struct {
	queryBus  *querybus.QueryBus
	nodeChat  *services.NodeChatService
	quiz      *services.QuizService
	graphRepo ports.GraphRepository
	queryRepo ports.QueryRepository
	docRepo   ports.DocumentRepository
	validate  *validator.Validate
	errors    *apperrors.ErrorHandler
	logger    *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	queryBus *querybus.QueryBus,
	nodeChat *services.NodeChatService,
	quiz *services.QuizService,
	graphRepo ports.GraphRepository,
	queryRepo ports.QueryRepository,
	docRepo ports.DocumentRepository,
	errors *apperrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		queryBus:  queryBus,
		nodeChat:  nodeChat,
		quiz:      quiz,
		graphRepo: graphRepo,
		queryRepo: queryRepo,
		docRepo:   docRepo,
		validate:  validator.New(),
		errors:    errors,
		logger:    logger,
	}
}

// GetNode handles GET /graphs/{graphID}/nodes/{nodeID}. Supports
// ?withConnections=true and ?withExamples=true.
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	nodeID := chi.URLParam(r, "nodeID")
	if graphID == "" || nodeID == "" {
		h.errors.Handle(w, r, apperrors.NewValidationError("graph ID and node ID are required"))
		return
	}

	query := queries.GetNodeQuery{
		GraphID:         graphID,
		NodeID:          nodeID,
		WithConnections: r.URL.Query().Get("withConnections") == "true",
		WithExamples:    r.URL.Query().Get("withExamples") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Query   string                 `json:"query" validate:"required"`
	History []services.ChatMessage `json:"history,omitempty"`
}

// Chat handles POST /graphs/{graphID}/nodes/{nodeID}/chat
func (h *NodeHandler) Chat(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	nodeID := chi.URLParam(r, "nodeID")

	var req chatRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	graph, err := h.graphRepo.GetByID(r.Context(), graphID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.nodeChat.Respond(r.Context(), graph, nodeID, req.Query, req.History, h.originalQueryText(r, graph))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

type quizRequest struct {
	NumQuestions int    `json:"num_questions,omitempty" validate:"omitempty,min=1,max=20"`
	DocumentID   string `json:"document_id,omitempty"`
}

// Quiz handles POST /graphs/{graphID}/nodes/{nodeID}/quiz
func (h *NodeHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	nodeID := chi.URLParam(r, "nodeID")

	var req quizRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}
	if req.NumQuestions == 0 {
		req.NumQuestions = services.DefaultQuizQuestions
	}

	graph, err := h.graphRepo.GetByID(r.Context(), graphID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var document *entities.Document
	if req.DocumentID != "" {
		document, err = h.docRepo.GetByID(r.Context(), req.DocumentID)
		if err != nil && !apperrors.IsNotFound(err) {
			h.errors.Handle(w, r, err)
			return
		}
	}

	quiz, err := h.quiz.GenerateQuiz(r.Context(), graph, nodeID, document, h.originalQueryText(r, graph), req.NumQuestions)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, quiz)
}

// SuggestedQuestions handles GET /graphs/{graphID}/nodes/{nodeID}/questions
func (h *NodeHandler) SuggestedQuestions(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	nodeID := chi.URLParam(r, "nodeID")

	graph, err := h.graphRepo.GetByID(r.Context(), graphID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	located := graph.FindNode(nodeID)
	if located == nil {
		h.errors.Handle(w, r, apperrors.NewNotFoundError("node '"+nodeID+"'"))
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": services.SuggestedQuestions(located.Node.Title),
	})
}

// originalQueryText resolves the text of the query that produced the graph.
// Chat and quiz prompts degrade gracefully without it.
func (h *NodeHandler) originalQueryText(r *http.Request, graph *aggregates.Graph) string {
	if graph.QueryID() == "" {
		return ""
	}
	query, err := h.queryRepo.GetByID(r.Context(), graph.QueryID())
	if err != nil {
		h.logger.Debug("Could not load original query for prompt context",
			zap.String("queryID", graph.QueryID()),
			zap.Error(err))
		return ""
	}
	return query.Text
}
