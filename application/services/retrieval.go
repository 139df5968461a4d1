package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/entities"
)

// DefaultMaxChunks is the passage budget for graph synthesis context.
const DefaultMaxChunks = 8

// NoRelevantInformation is returned as the whole context when retrieval
// comes back empty. The synthesis prompt still runs; the model is expected
// to fall back on its general knowledge when it sees this sentinel.
const NoRelevantInformation = "No relevant information found."

// ContextBuilder turns a user query into a retrieval-augmented context
// block for downstream prompts.
type ContextBuilder struct {
	retriever ports.Retriever
	logger    *zap.Logger
}

// NewContextBuilder creates a new context builder
func NewContextBuilder(retriever ports.Retriever, logger *zap.Logger) *ContextBuilder {
	return &ContextBuilder{
		retriever: retriever,
		logger:    logger,
	}
}

// BuildContext retrieves up to maxChunks passages for the query and formats
// them as a numbered context block. When params carry company or challenge
// attributes the search query is augmented with them before retrieval; the
// augmentation order is fixed so equal inputs always produce the same
// search string.
func (b *ContextBuilder) BuildContext(ctx context.Context, query string, params *entities.ContextParams, maxChunks int) (string, error) {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	searchQuery := AugmentQuery(query, params)

	passages, err := b.retriever.Search(ctx, searchQuery, maxChunks)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		b.logger.Debug("retrieval returned no passages", zap.String("query", query))
		return NoRelevantInformation, nil
	}

	return FormatPassages(passages), nil
}

// AugmentQuery expands the raw query with situational attributes. Fields are
// appended in a fixed order: company size, maturity stage, industry, then
// the management challenge. Without any applicable attribute the query is
// returned untouched.
func AugmentQuery(query string, params *entities.ContextParams) string {
	if params.IsZero() {
		return query
	}

	var sb strings.Builder
	sb.WriteString(query)
	sb.WriteString(" for ")

	if params.Company != nil {
		if params.Company.Size != "" {
			fmt.Fprintf(&sb, "%s sized company ", params.Company.Size)
		}
		if params.Company.Maturity != "" {
			fmt.Fprintf(&sb, "in %s stage ", params.Company.Maturity)
		}
		if params.Company.Industry != "" {
			fmt.Fprintf(&sb, "in %s industry ", params.Company.Industry)
		}
	}
	if params.ManagementChallenge != "" {
		fmt.Fprintf(&sb, "facing %s challenge ", params.ManagementChallenge)
	}

	return sb.String()
}

// FormatPassages renders retrieved passages as numbered blocks separated by
// blank lines.
func FormatPassages(passages []ports.Passage) string {
	blocks := make([]string, len(passages))
	for i, p := range passages {
		blocks[i] = fmt.Sprintf("PASSAGE %d:\n%s", i+1, p.Text)
	}
	return strings.Join(blocks, "\n\n")
}
