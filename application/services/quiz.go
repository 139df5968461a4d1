package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/errors"
	"stratgraph/pkg/textparse"
)

const (
	quizTemperature           = 0.7
	quizMaxTokens             = 2000
	DefaultQuizQuestions      = 5
	quizRelatedDescriptionMax = 100
)

// QuizFailedCompletely is the error string of the last-resort quiz payload.
const QuizFailedCompletely = "Quiz generation failed completely"

const quizSystemPrompt = "You are a helpful assistant."

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Quiz is the generated question set. Error is non-empty only on degraded
// results: either placeholder questions or, with an empty question list,
// total failure.
type Quiz struct {
	Questions []QuizQuestion `json:"questions,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// QuizService generates multiple-choice quizzes testing understanding of a
// single graph node.
type QuizService struct {
	completer ports.Completer
	logger    *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(completer ports.Completer, logger *zap.Logger) *QuizService {
	return &QuizService{
		completer: completer,
		logger:    logger,
	}
}

// GenerateQuiz builds a quiz about the given node. Model flakiness is
// absorbed by a two-stage ladder: the full prompt first, a simplified
// prompt on failure, and a static placeholder payload when both come back
// unparseable. Only a failure of the simplified call itself yields the
// bare error payload. Returns NotFound when the node is absent.
func (s *QuizService) GenerateQuiz(ctx context.Context, graph *aggregates.Graph, nodeID string, document *entities.Document, originalQueryText string, numQuestions int) (*Quiz, error) {
	located := graph.FindNode(nodeID)
	if located == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("node '%s'", nodeID))
	}
	if numQuestions <= 0 {
		numQuestions = DefaultQuizQuestions
	}

	quizContext := s.buildQuizContext(graph, located.Node, document, originalQueryText)

	quiz := s.tryGenerate(ctx, fullQuizPrompt(quizContext, numQuestions))
	if quiz != nil {
		return quiz, nil
	}

	s.logger.Warn("quiz generation failed, retrying with simplified prompt",
		zap.String("node_id", nodeID))

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:      quizSystemPrompt,
		Prompt:      simpleQuizPrompt(quizContext, numQuestions),
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})
	if err != nil {
		s.logger.Error("simplified quiz generation failed", zap.Error(err))
		return &Quiz{Error: QuizFailedCompletely}, nil
	}
	if quiz := parseQuiz(raw); quiz != nil {
		return quiz, nil
	}

	return placeholderQuiz(), nil
}

func (s *QuizService) tryGenerate(ctx context.Context, prompt string) *Quiz {
	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:      quizSystemPrompt,
		Prompt:      prompt,
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})
	if err != nil {
		s.logger.Warn("quiz completion failed", zap.Error(err))
		return nil
	}
	return parseQuiz(raw)
}

func parseQuiz(raw string) *Quiz {
	jsonStr, ok := textparse.ExtractJSONObject(raw)
	if !ok {
		return nil
	}
	var quiz Quiz
	if err := json.Unmarshal([]byte(jsonStr), &quiz); err != nil {
		return nil
	}
	if len(quiz.Questions) == 0 {
		return nil
	}
	return &quiz
}

// buildQuizContext renders the node, its examples, connected concepts, the
// originating query and the source document as quiz material.
func (s *QuizService) buildQuizContext(graph *aggregates.Graph, node *entities.GraphNode, document *entities.Document, originalQueryText string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Topic: %s\n\n", orUnknown(node.Title, "Unknown Topic"))
	fmt.Fprintf(&sb, "Description: %s\n\n", orUnknown(node.Description, "No description available"))

	if len(node.Examples) > 0 {
		sb.WriteString("Examples:\n")
		for _, example := range node.Examples {
			fmt.Fprintf(&sb, "- %s: %s\n", example.Title, example.Description)
		}
		sb.WriteString("\n")
	}

	var connected []*entities.GraphNode
	for _, conn := range graph.ConnectionsFor(node.ID) {
		if other := graph.FindNode(conn.Other(node.ID)); other != nil {
			connected = append(connected, other.Node)
		}
	}
	if len(connected) > 0 {
		sb.WriteString("Related concepts:\n")
		for _, related := range connected {
			fmt.Fprintf(&sb, "- %s: %s\n", orUnknown(related.Title, "Unknown"), truncate(related.Description, quizRelatedDescriptionMax))
		}
		sb.WriteString("\n")
	}

	if originalQueryText != "" {
		fmt.Fprintf(&sb, "Original query: %s\n\n", originalQueryText)
	}

	title, author := "Unknown", "Unknown"
	if document != nil {
		title = orUnknown(document.Title, "Unknown")
		author = orUnknown(document.Author, "Unknown")
	}
	fmt.Fprintf(&sb, "Source: %s by %s\n", title, author)

	return sb.String()
}

func fullQuizPrompt(quizContext string, numQuestions int) string {
	return fmt.Sprintf(`Based on the following information about a concept from the St. Gallen Management Model, create %d multiple-choice quiz questions to test understanding.

%s

For each question:
1. Create a question that tests understanding (not just memorization)
2. Provide 4 options (A, B, C, D)
3. Indicate the correct answer
4. Add a brief explanation for why the answer is correct

Ensure questions vary in difficulty and cover different aspects of the concept.
Format your response as a JSON object with the following structure:
{
    "questions": [
        {
            "question": "Question text...",
            "options": {
                "A": "First option",
                "B": "Second option",
                "C": "Third option",
                "D": "Fourth option"
            },
            "correct_answer": "A",
            "explanation": "Explanation of why this answer is correct..."
        }
    ]
}
`, numQuestions, quizContext)
}

func simpleQuizPrompt(quizContext string, numQuestions int) string {
	return fmt.Sprintf(`Create %d basic multiple-choice questions about this topic:
%s

Return only a JSON object with this structure:
{
    "questions": [
        {
            "question": "Question text",
            "options": {"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D"},
            "correct_answer": "A",
            "explanation": "Why A is correct"
        }
    ]
}
`, numQuestions, quizContext)
}

func placeholderQuiz() *Quiz {
	return &Quiz{
		Questions: []QuizQuestion{
			{
				Question: "What is the main concept described in this node?",
				Options: map[string]string{
					"A": "Option A",
					"B": "Option B",
					"C": "Option C",
					"D": "Option D",
				},
				CorrectAnswer: "A",
				Explanation:   "This is a placeholder question. The quiz generation failed.",
			},
		},
		Error: "Failed to generate custom quiz questions. Using placeholder.",
	}
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
