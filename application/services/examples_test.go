package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratgraph/domain/core/entities"
)

func TestExtractExamples(t *testing.T) {
	t.Run("parses labelled example blocks", func(t *testing.T) {
		text := "Example: Mayo Clinic\nThe clinic applied stakeholder mapping across departments.\n\nExample: IBM\nIBM restructured around strategic business units."

		examples := ExtractExamples(text)
		require.Len(t, examples, 2)
		assert.Equal(t, "Mayo Clinic", examples[0].Title)
		assert.Equal(t, "The clinic applied stakeholder mapping across departments.", examples[0].Description)
		assert.Equal(t, "IBM", examples[1].Title)
		assert.Equal(t, "IBM restructured around strategic business units.", examples[1].Description)
	})

	t.Run("folds title text after a colon into the description", func(t *testing.T) {
		text := "Example: Toyota: lean production pioneer\nThe company institutionalized continuous improvement."

		examples := ExtractExamples(text)
		require.Len(t, examples, 1)
		assert.Equal(t, "Toyota", examples[0].Title)
		assert.Equal(t, "lean production pioneer The company institutionalized continuous improvement.", examples[0].Description)
	})

	t.Run("falls back to example-like paragraphs", func(t *testing.T) {
		text := "Stakeholder analysis matters.\n\nA good case is Siemens. They mapped stakeholders before every restructuring."

		examples := ExtractExamples(text)
		require.Len(t, examples, 1)
		assert.Equal(t, "A good case is Siemens", examples[0].Title)
		assert.Equal(t, "They mapped stakeholders before every restructuring.", examples[0].Description)
	})

	t.Run("paragraph without sentence break keeps whole text", func(t *testing.T) {
		text := "one instance of lean adoption"

		examples := ExtractExamples(text)
		require.Len(t, examples, 1)
		assert.Equal(t, "Example", examples[0].Title)
		assert.Equal(t, "one instance of lean adoption", examples[0].Description)
	})

	t.Run("no match yields empty slice", func(t *testing.T) {
		assert.Empty(t, ExtractExamples("nothing relevant here"))
	})
}

func TestEnsureExamples(t *testing.T) {
	ctx := context.Background()

	t.Run("stored examples win without a model call", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{err: assert.AnError}}}
		svc := NewExampleService(completer, testLogger())

		node := &entities.GraphNode{
			ID:       "n1",
			Title:    "Value Proposition",
			Examples: []entities.Example{{Title: "Stored", Description: "kept"}},
		}
		examples := svc.EnsureExamples(ctx, node)

		require.Len(t, examples, 1)
		assert.Equal(t, "Stored", examples[0].Title)
		assert.Empty(t, completer.requests)
	})

	t.Run("generates and extracts on missing examples", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{
			text: "Example: Netflix\nReinvented its value proposition around streaming.",
		}}}
		svc := NewExampleService(completer, testLogger())

		node := &entities.GraphNode{ID: "n1", Title: "Value Proposition", Description: "the offering"}
		examples := svc.EnsureExamples(ctx, node)

		require.Len(t, examples, 1)
		assert.Equal(t, "Netflix", examples[0].Title)
		require.Len(t, completer.requests, 1)
		assert.InDelta(t, 0.7, completer.requests[0].Temperature, 1e-9)
		assert.Equal(t, 500, completer.requests[0].MaxTokens)
	})

	t.Run("completion failure yields deterministic defaults", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{err: assert.AnError}}}
		svc := NewExampleService(completer, testLogger())

		node := &entities.GraphNode{ID: "n1", Title: "Change Management"}
		examples := svc.EnsureExamples(ctx, node)

		require.Len(t, examples, 2)
		assert.Equal(t, "Generic Application", examples[0].Title)
		assert.Contains(t, examples[0].Description, "Change Management")
	})
}
