package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/errors"
)

const validQuizJSON = `{
  "questions": [
    {
      "question": "What drives value pricing?",
      "options": {"A": "Delivered value", "B": "Cost", "C": "Competitors", "D": "Habit"},
      "correct_answer": "A",
      "explanation": "Value pricing anchors on customer value."
    }
  ]
}`

func quizTestGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	root := &entities.GraphNode{
		ID: "root", Title: "Pricing", Layer: 0, Relevance: 10,
		Children: []*entities.GraphNode{
			{ID: "vp", Title: "Value Pricing", Description: "price on delivered value", Layer: 1, Relevance: 8,
				Examples: []entities.Example{{Title: "SaaS", Description: "tiered by usage"}}},
			{ID: "cp", Title: "Cost Plus", Description: strings.Repeat("long description ", 20), Layer: 1, Relevance: 6},
		},
	}
	connections := []entities.Connection{{SourceID: "vp", TargetID: "cp", RelationshipType: "contrasts"}}
	graph, err := aggregates.NewGraph("q1", "u1", root, connections)
	require.NoError(t, err)
	return graph
}

func TestGenerateQuiz(t *testing.T) {
	ctx := context.Background()
	graph := quizTestGraph(t)
	doc := &entities.Document{ID: "d1", Title: "Management Handbook", Author: "Ulrich"}

	t.Run("unknown node returns NotFound", func(t *testing.T) {
		svc := NewQuizService(&fakeCompleter{outcomes: []completionOutcome{{text: validQuizJSON}}}, testLogger())

		_, err := svc.GenerateQuiz(ctx, graph, "missing", doc, "", 5)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("first attempt success", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{text: validQuizJSON}}}
		svc := NewQuizService(completer, testLogger())

		quiz, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "pricing for startups", 5)
		require.NoError(t, err)
		require.Len(t, quiz.Questions, 1)
		assert.Empty(t, quiz.Error)
		assert.Equal(t, "A", quiz.Questions[0].CorrectAnswer)

		require.Len(t, completer.requests, 1)
		req := completer.requests[0]
		assert.Equal(t, "You are a helpful assistant.", req.System)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		assert.Equal(t, 2000, req.MaxTokens)
		assert.Contains(t, req.Prompt, "Topic: Value Pricing")
		assert.Contains(t, req.Prompt, "- SaaS: tiered by usage")
		assert.Contains(t, req.Prompt, "Original query: pricing for startups")
		assert.Contains(t, req.Prompt, "Source: Management Handbook by Ulrich")
	})

	t.Run("related concept descriptions are truncated", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{text: validQuizJSON}}}
		svc := NewQuizService(completer, testLogger())

		_, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "", 5)
		require.NoError(t, err)

		prompt := completer.requests[0].Prompt
		assert.Contains(t, prompt, "Related concepts:\n- Cost Plus: ")
		assert.Contains(t, prompt, "...")
		assert.NotContains(t, prompt, strings.Repeat("long description ", 20))
	})

	t.Run("simplified retry succeeds after unparseable first attempt", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{
			{text: "I am unable to answer in JSON."},
			{text: validQuizJSON},
		}}
		svc := NewQuizService(completer, testLogger())

		quiz, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "", 3)
		require.NoError(t, err)
		require.Len(t, quiz.Questions, 1)
		assert.Empty(t, quiz.Error)

		require.Len(t, completer.requests, 2)
		assert.Contains(t, completer.requests[1].Prompt, "basic multiple-choice questions")
	})

	t.Run("two unparseable attempts yield placeholder with error", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{
			{text: "not json"},
			{text: "still not json"},
		}}
		svc := NewQuizService(completer, testLogger())

		quiz, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "", 5)
		require.NoError(t, err)
		require.Len(t, quiz.Questions, 1)
		assert.Equal(t, "Failed to generate custom quiz questions. Using placeholder.", quiz.Error)
		assert.Equal(t, "A", quiz.Questions[0].CorrectAnswer)
	})

	t.Run("failed simplified call yields bare error payload", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{
			{text: "not json"},
			{err: assert.AnError},
		}}
		svc := NewQuizService(completer, testLogger())

		quiz, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "", 5)
		require.NoError(t, err)
		assert.Empty(t, quiz.Questions)
		assert.Equal(t, QuizFailedCompletely, quiz.Error)
	})

	t.Run("zero question count defaults", func(t *testing.T) {
		completer := &fakeCompleter{outcomes: []completionOutcome{{text: validQuizJSON}}}
		svc := NewQuizService(completer, testLogger())

		_, err := svc.GenerateQuiz(ctx, graph, "vp", doc, "", 0)
		require.NoError(t, err)
		assert.Contains(t, completer.requests[0].Prompt, "create 5 multiple-choice quiz questions")
	})
}
