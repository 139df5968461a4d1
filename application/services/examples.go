package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/entities"
)

const (
	examplesTemperature = 0.7
	examplesMaxTokens   = 500
)

var exampleHeaderRe = regexp.MustCompile(`(?m)^[ \t]*Example:?[ \t]*`)

// ExampleService lazily generates illustrative real-world examples for graph
// nodes. Examples stored on a node are authoritative; generation only runs
// for nodes that carry none.
type ExampleService struct {
	completer ports.Completer
	logger    *zap.Logger
}

// NewExampleService creates a new example service
func NewExampleService(completer ports.Completer, logger *zap.Logger) *ExampleService {
	return &ExampleService{
		completer: completer,
		logger:    logger,
	}
}

// EnsureExamples returns the node's stored examples, generating them on the
// fly when absent. Generation failure degrades to a deterministic default
// pair rather than an error.
func (s *ExampleService) EnsureExamples(ctx context.Context, node *entities.GraphNode) []entities.Example {
	if len(node.Examples) > 0 {
		return node.Examples
	}

	prompt := fmt.Sprintf(`Generate 2-3 real-world examples that illustrate the following management concept from the St. Gallen Management Model:

Concept: %s
Description: %s

Each example should:
1. Have a clear title (e.g., company name or scenario)
2. Briefly explain how the concept is applied in that context
3. Be realistic and preferably based on actual cases

Format each example as:
Example: [Title]
[Description of the application...]
`, node.Title, node.Description)

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		Prompt:      prompt,
		Temperature: examplesTemperature,
		MaxTokens:   examplesMaxTokens,
	})
	if err != nil {
		s.logger.Warn("example generation failed, using defaults",
			zap.String("node_id", node.ID),
			zap.Error(err))
		return DefaultExamples(node.Title)
	}

	return ExtractExamples(raw)
}

// ExtractExamples parses "Example: Title" blocks out of model text. Each
// block runs from its header to the next header or end of text; the first
// line is the title, the remainder the description. When the title itself
// contains a colon, the part after it is folded into the description. If no
// block is found at all, paragraphs mentioning example-like keywords are
// promoted to examples as a weaker fallback.
func ExtractExamples(text string) []entities.Example {
	var examples []entities.Example

	headers := exampleHeaderRe.FindAllStringIndex(text, -1)
	for i, header := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := text[header[1]:end]

		title, description, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		title = strings.TrimSpace(title)
		description = strings.TrimSpace(description)
		if title == "" || description == "" {
			continue
		}

		if before, after, found := strings.Cut(title, ":"); found {
			title = strings.TrimSpace(before)
			description = strings.TrimSpace(after) + " " + description
		}

		examples = append(examples, entities.Example{
			Title:       title,
			Description: description,
		})
	}

	if len(examples) > 0 {
		return examples
	}

	for _, para := range strings.Split(text, "\n\n") {
		lower := strings.ToLower(para)
		if !strings.Contains(lower, "example") && !strings.Contains(lower, "case") && !strings.Contains(lower, "instance") {
			continue
		}
		if title, description, found := strings.Cut(para, ". "); found {
			examples = append(examples, entities.Example{
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
			})
		} else {
			examples = append(examples, entities.Example{
				Title:       "Example",
				Description: strings.TrimSpace(para),
			})
		}
	}
	return examples
}

// DefaultExamples is the deterministic substitute when example generation
// fails outright.
func DefaultExamples(conceptTitle string) []entities.Example {
	return []entities.Example{
		{
			Title:       "Generic Application",
			Description: fmt.Sprintf("Organizations typically apply %s by integrating it into their strategic planning process to ensure alignment with business objectives.", conceptTitle),
		},
		{
			Title:       "Implementation Example",
			Description: fmt.Sprintf("A medium-sized technology company implemented %s to improve their management structure and decision-making processes.", conceptTitle),
		},
	}
}
