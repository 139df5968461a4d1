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
	"stratgraph/domain/core/entities"
	"stratgraph/domain/events"
)

// IngestDocumentHandler handles document ingestion commands
type IngestDocumentHandler struct {
	docRepo      ports.DocumentRepository
	indexer      ports.DocumentIndexer
	publisher    ports.EventPublisher
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// NewIngestDocumentHandler creates a new document ingestion handler
func NewIngestDocumentHandler(
	docRepo ports.DocumentRepository,
	indexer ports.DocumentIndexer,
	publisher ports.EventPublisher,
	chunkSize, chunkOverlap int,
	logger *zap.Logger,
) *IngestDocumentHandler {
	return &IngestDocumentHandler{
		docRepo:      docRepo,
		indexer:      indexer,
		publisher:    publisher,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Handle stores the document and indexes its chunks for retrieval
func (h *IngestDocumentHandler) Handle(ctx context.Context, cmd commands.IngestDocumentCommand) (*entities.Document, error) {
	now := time.Now()
	doc := &entities.Document{
		ID:        uuid.New().String(),
		Title:     cmd.Title,
		Author:    cmd.Author,
		Content:   cmd.Content,
		Metadata:  cmd.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.docRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	pieces := services.ChunkText(cmd.Content, h.chunkSize, h.chunkOverlap)
	chunks := make([]ports.DocumentChunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = ports.DocumentChunk{
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			ChunkIndex:    i,
			Text:          text,
		}
	}

	if err := h.indexer.IndexChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}

	event := events.NewDocumentIndexed(doc.ID, doc.Title, len(chunks), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish document indexed event",
			zap.String("documentID", doc.ID),
			zap.Error(err))
	}

	h.logger.Info("Document ingested",
		zap.String("documentID", doc.ID),
		zap.Int("chunks", len(chunks)))

	return doc, nil
}
