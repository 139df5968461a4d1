package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/commands/bus"
	"stratgraph/application/queries"
	querybus "stratgraph/application/queries/bus"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/common"
	apperrors "stratgraph/pkg/errors"
)

// Document bodies can be whole book chapters.
const maxDocumentBody = 16 << 20 // 16 MiB

// DocumentHandler handles source document ingestion and listing
type DocumentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	validate   *validator.Validate
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errors *apperrors.ErrorHandler, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		validate:   validator.New(),
		errors:     errors,
		logger:     logger,
	}
}

type ingestDocumentRequest struct {
	Title    string            `json:"title" validate:"required"`
	Author   string            `json:"author,omitempty"`
	Content  string            `json:"content" validate:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestDocument handles POST /documents. Content is plain text; chunking
// and indexing happen synchronously.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestDocumentRequest
	if err := common.ParseJSONBody(r, &req, maxDocumentBody); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.IngestDocumentCommand{
		Title:    req.Title,
		Author:   req.Author,
		Content:  req.Content,
		Metadata: req.Metadata,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	// Do not echo the full content back.
	if doc, ok := result.(*entities.Document); ok {
		common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"document_id": doc.ID,
			"title":       doc.Title,
			"author":      doc.Author,
			"created_at":  doc.CreatedAt,
		})
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// ListDocuments handles GET /documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListDocumentsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
