package handlers

import (
	"context"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/application/queries"
	"stratgraph/domain/core/entities"
)

// ListDocumentsHandler handles document listing queries
type ListDocumentsHandler struct {
	docRepo ports.DocumentRepository
	logger  *zap.Logger
}

// NewListDocumentsHandler creates a new list documents handler
func NewListDocumentsHandler(docRepo ports.DocumentRepository, logger *zap.Logger) *ListDocumentsHandler {
	return &ListDocumentsHandler{
		docRepo: docRepo,
		logger:  logger,
	}
}

// Handle returns all stored documents without their content bodies
func (h *ListDocumentsHandler) Handle(ctx context.Context, _ queries.ListDocumentsQuery) ([]*entities.Document, error) {
	docs, err := h.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		doc.Content = ""
	}
	return docs, nil
}
