package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/errors"
)

const (
	chatTemperature     = 0.3
	chatMaxTokens       = 1000
	chatRetrievalLimit  = 5
	maxRelatedNodes     = 3
	defaultJaccardScore = 0.5
)

// ChatFailureResponse is returned as the answer text when the completion
// call fails. Chat degrades to an apology, not an error.
const ChatFailureResponse = "I'm sorry, I encountered an error while generating a response."

const chatSystemPrompt = `You are an expert in the St. Gallen Management Model, a comprehensive framework for business management.

Your task is to answer questions about specific concepts within the model. For each question:
1. Provide a clear, concise response directly addressing the query
2. Explain the concept's role within the St. Gallen Management Model
3. Include 2-3 real-world examples that illustrate the concept's application
4. Mention any related concepts or connections that might be helpful

Format your examples as follows:
Example: [Title]
[Description of the example and how it relates to the concept]

Keep your explanations concise but informative, avoiding unnecessary technical jargon while maintaining accuracy.`

// ChatMessage is one turn of prior conversation supplied by the caller.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RelatedNode is a lexical-similarity suggestion surfaced next to a chat
// answer.
type RelatedNode struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
}

// ChatResult is the full node chat payload.
type ChatResult struct {
	Response           string             `json:"response"`
	Examples           []entities.Example `json:"examples"`
	RelatedNodes       []RelatedNode      `json:"related_nodes"`
	SuggestedQuestions []string           `json:"suggested_questions"`
}

// NodeChatService answers questions grounded in a single graph node, its
// position in the tree and retrieved source passages.
type NodeChatService struct {
	completer ports.Completer
	retriever ports.Retriever
	logger    *zap.Logger
}

// NewNodeChatService creates a new node chat service
func NewNodeChatService(completer ports.Completer, retriever ports.Retriever, logger *zap.Logger) *NodeChatService {
	return &NodeChatService{
		completer: completer,
		retriever: retriever,
		logger:    logger,
	}
}

// Respond answers a question about one node of the graph. Returns NotFound
// when the node id is absent from the tree; every other failure degrades
// within the payload (apology text, empty example list) instead of erroring.
func (s *NodeChatService) Respond(ctx context.Context, graph *aggregates.Graph, nodeID, query string, history []ChatMessage, originalQueryText string) (*ChatResult, error) {
	located := graph.FindNode(nodeID)
	if located == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("node '%s'", nodeID))
	}
	node := located.Node

	nodeContext := s.buildNodeContext(graph, located, originalQueryText)
	chatContext := formatChatHistory(history)
	documentContext := s.retrieveDocumentContext(ctx, query, node)

	responseText := s.generateResponse(ctx, query, nodeContext, chatContext, documentContext)

	return &ChatResult{
		Response:           responseText,
		Examples:           ExtractExamples(responseText),
		RelatedNodes:       FindRelatedNodes(graph.Root(), nodeID, query),
		SuggestedQuestions: SuggestedQuestions(node.Title),
	}, nil
}

// buildNodeContext renders the node, its ancestry and its connections as a
// prompt block.
func (s *NodeChatService) buildNodeContext(graph *aggregates.Graph, located *entities.NodePath, originalQueryText string) string {
	node := located.Node

	var sb strings.Builder
	fmt.Fprintf(&sb, "Node Title: %s\nNode Description: %s\n", node.Title, node.Description)
	fmt.Fprintf(&sb, "Layer: %d\nRelevance: %d/10\n", node.Layer, node.Relevance)
	if originalQueryText != "" {
		fmt.Fprintf(&sb, "\nOriginal Query: %s\n", originalQueryText)
	}

	if len(located.Path) > 0 {
		sb.WriteString("\nNode Path (Hierarchical Position):\n")
		for i, ancestor := range located.Path {
			fmt.Fprintf(&sb, "%s- %s\n", strings.Repeat("  ", i), ancestor.Title)
		}
	}

	if connections := graph.ConnectionsFor(node.ID); len(connections) > 0 {
		sb.WriteString("\nConnections to Other Nodes:\n")
		for _, conn := range connections {
			otherID := conn.Other(node.ID)
			otherTitle := otherID
			if other := graph.FindNode(otherID); other != nil {
				otherTitle = other.Node.Title
			}
			relType := conn.RelationshipType
			if relType == "" {
				relType = "related"
			}
			fmt.Fprintf(&sb, "- Connected to '%s': %s\n", otherTitle, relType)
		}
	}
	return sb.String()
}

func formatChatHistory(history []ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Previous Conversation:\n")
	for _, msg := range history {
		fmt.Fprintf(&sb, "%s: %s\n", capitalize(msg.Role), msg.Content)
	}
	return sb.String()
}

// retrieveDocumentContext searches the index with the query enriched by the
// node's title and description. Retrieval problems are reported inline in
// the context block so the chat still proceeds.
func (s *NodeChatService) retrieveDocumentContext(ctx context.Context, query string, node *entities.GraphNode) string {
	enhancedQuery := fmt.Sprintf("%s %s %s", query, node.Title, node.Description)

	passages, err := s.retriever.Search(ctx, enhancedQuery, chatRetrievalLimit)
	if err != nil {
		s.logger.Warn("document context retrieval failed",
			zap.String("node_id", node.ID),
			zap.Error(err))
		return "Error retrieving relevant information from the document."
	}
	if len(passages) == 0 {
		return "No relevant information found in the document."
	}

	var sb strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sb, "PASSAGE %d:\n%s\n\n", i+1, p.Text)
	}
	return sb.String()
}

func (s *NodeChatService) generateResponse(ctx context.Context, query, nodeContext, chatContext, documentContext string) string {
	userPrompt := fmt.Sprintf(`Question: %s

Information about this concept:
%s

%s

Relevant information from the St. Gallen Management Model:
%s

Please provide a clear, helpful response with examples and practical applications.
`, query, nodeContext, chatContext, documentContext)

	response, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:      chatSystemPrompt,
		Prompt:      userPrompt,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logger.Error("chat completion failed", zap.Error(err))
		return ChatFailureResponse
	}
	return response
}

// FindRelatedNodes scores every non-root node visited after the target in a
// pre-order walk by lexical overlap with the query, and returns the top
// three. The target's own subtree is skipped, so "related" means nodes that
// follow it in document order, typically siblings and later branches.
func FindRelatedNodes(root *entities.GraphNode, nodeID, query string) []RelatedNode {
	var related []RelatedNode
	found := false

	var walk func(node *entities.GraphNode, level int)
	walk = func(node *entities.GraphNode, level int) {
		if node.ID == nodeID {
			found = true
			return
		}
		if found && level > 0 {
			related = append(related, RelatedNode{
				ID:        node.ID,
				Title:     node.Title,
				Relevance: jaccardScore(node.Title, node.Description, query),
			})
		}
		for _, child := range node.Children {
			walk(child, level+1)
		}
	}
	if root != nil {
		walk(root, 0)
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Relevance > related[j].Relevance
	})
	if len(related) > maxRelatedNodes {
		related = related[:maxRelatedNodes]
	}
	return related
}

// jaccardScore is the term-set Jaccard similarity between the query and the
// node's title plus description, rounded to two decimals. Empty term sets
// on both sides score a neutral 0.5.
func jaccardScore(title, description, query string) float64 {
	queryTerms := termSet(query)
	nodeTerms := termSet(title + " " + description)

	intersection := 0
	for term := range queryTerms {
		if _, ok := nodeTerms[term]; ok {
			intersection++
		}
	}
	union := len(queryTerms) + len(nodeTerms) - intersection
	if union == 0 {
		return defaultJaccardScore
	}
	return math.Round(float64(intersection)/float64(union)*100) / 100
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(text)) {
		set[term] = struct{}{}
	}
	return set
}

// SuggestedQuestions returns fixed follow-up templates for a node title.
// Deterministic on purpose; an extra model call here is not worth the
// latency.
func SuggestedQuestions(nodeTitle string) []string {
	return []string{
		fmt.Sprintf("How can %s be measured or evaluated in practice?", nodeTitle),
		fmt.Sprintf("What are the key challenges in managing %s effectively?", nodeTitle),
		fmt.Sprintf("How does %s interact with other elements of the St. Gallen Management Model?", nodeTitle),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
