package ports

import "context"

// CompletionRequest carries one chat-completion call to the language model.
// System may be empty; Temperature and MaxTokens are set explicitly by every
// caller because each generation stage tunes them differently.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer defines the interface for text generation
type Completer interface {
	// Complete runs one chat completion and returns the raw model text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder defines the interface for turning text into vectors
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Passage is one retrieved chunk of source material.
type Passage struct {
	Text          string
	DocumentID    string
	DocumentTitle string
	ChunkIndex    int
	Score         float64
}

// Retriever defines the interface for semantic search over indexed documents
type Retriever interface {
	// Search returns up to limit passages most similar to the query text
	Search(ctx context.Context, query string, limit int) ([]Passage, error)
}

// DocumentChunk is one indexable piece of a document.
type DocumentChunk struct {
	DocumentID    string
	DocumentTitle string
	ChunkIndex    int
	Text          string
}

// DocumentIndexer defines the interface for adding documents to the search index
type DocumentIndexer interface {
	// IndexChunks embeds and stores the given chunks, replacing any previous
	// chunks of the same document
	IndexChunks(ctx context.Context, chunks []DocumentChunk) error

	// DeleteDocument removes every chunk of a document from the index
	DeleteDocument(ctx context.Context, documentID string) error
}
