package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/entities"
	"stratgraph/pkg/textparse"
)

const (
	synthesisTemperature = 0.2
	synthesisMaxTokens   = 4000
)

const synthesisSystemPrompt = `You are an expert in the St. Gallen Management Model, a comprehensive framework for business management.

Your task is to create a layered knowledge graph in JSON format based on the user's query and relevant context from the St. Gallen Management Model.

The knowledge graph should:
1. Directly address the user's query
2. Present information in a structured, hierarchical format
3. Include only the most relevant information from the provided context
4. Adapt the answer based on the provided context parameters such as:
   - Company attributes (size, maturity, industry)
   - Management role of the person asking the question
   - Type of business challenge they're facing
   - Environmental factors affecting the organization

When context parameters are provided, tailor your response to be most relevant to that specific situation.
For example:
- For small companies, emphasize lean processes and resource efficiency
- For C-level roles, focus on strategic and normative dimensions
- For growth challenges, highlight scaling strategies and organizational development
- For volatile environments, emphasize adaptability and resilience

The output should be a valid JSON object with the following structure:
{
  "id": "node_0",
  "title": "Central Topic/Decision",
  "description": "Clear, concise explanation of the central topic or answer to the query",
  "layer": 0,
  "relevance": 10,
  "children": [
    {
      "id": "node_1",
      "title": "Core Element 1",
      "description": "Description of this element",
      "layer": 1,
      "relevance": 9,
      "children": [...]
    },
    ...
  ]
}

Where:
- "id": Unique identifier for each node (e.g., "node_0", "node_1")
- "title": Concise title for the node (max 5 words)
- "description": Detailed explanation (1-2 sentences)
- "layer": Integer representing hierarchical depth (0-4)
- "relevance": Integer (1-10) representing importance to query
- "children": Array of child nodes (with the same structure)

Make the graph comprehensive but focused on the query topic.`

const synthesisPromptFooter = `
Based on the query and the provided context from the St. Gallen Management Model, create a structured layered JSON graph as specified.

The graph should represent the St. Gallen Management Model with layers:
- Layer 0: Central topic/decision
- Layer 1: Core SGMM elements (Environment, Organization, Management)
- Layer 2: Main management dimensions
- Layer 3: Specific concepts and methodologies
- Layer 4: Practical applications (if relevant)

Also generate the list of non-hierarchical connections between related nodes.

Ensure all JSON is properly structured with the required fields.
`

// Synthesizer turns a user query into a layered decision graph via one
// retrieval-augmented model call.
type Synthesizer struct {
	completer ports.Completer
	builder   *ContextBuilder
	logger    *zap.Logger
}

// NewSynthesizer creates a new graph synthesizer
func NewSynthesizer(completer ports.Completer, builder *ContextBuilder, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		builder:   builder,
		logger:    logger,
	}
}

// synthesisEnvelope matches the preferred model output shape: the tree under
// "graph" with a sibling connection list.
type synthesisEnvelope struct {
	Graph       *entities.GraphNode   `json:"graph"`
	Connections []entities.Connection `json:"connections"`
}

// Synthesize generates the decision graph for a query. It never returns an
// error: any failure along the way (retrieval, completion, JSON extraction,
// parsing) degrades to the deterministic fallback tree with no connections,
// because a usable skeleton beats a failed request for this feature.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, params *entities.ContextParams) (*entities.GraphNode, []entities.Connection) {
	contextBlock, err := s.builder.BuildContext(ctx, query, params, DefaultMaxChunks)
	if err != nil {
		s.logger.Warn("context retrieval failed, synthesizing without passages",
			zap.String("query", query),
			zap.Error(err))
		contextBlock = NoRelevantInformation
	}

	userPrompt := buildSynthesisPrompt(query, contextBlock, params)

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:      synthesisSystemPrompt,
		Prompt:      userPrompt,
		Temperature: synthesisTemperature,
		MaxTokens:   synthesisMaxTokens,
	})
	if err != nil {
		s.logger.Error("graph completion failed, using fallback tree",
			zap.String("query", query),
			zap.Error(err))
		return FallbackTree(query), nil
	}

	root, connections, err := parseSynthesisOutput(raw)
	if err != nil {
		s.logger.Error("graph output unparseable, using fallback tree",
			zap.String("query", query),
			zap.Error(err))
		return FallbackTree(query), nil
	}
	return root, connections
}

// buildSynthesisPrompt assembles the user prompt: query, retrieved context,
// the optional context-parameter block in its fixed field order, then the
// structural instructions.
func buildSynthesisPrompt(query, contextBlock string, params *entities.ContextParams) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "QUERY: %s\n\n", query)
	fmt.Fprintf(&sb, "RELEVANT CONTEXT FROM ST. GALLEN MANAGEMENT MODEL:\n%s\n", contextBlock)

	if !params.IsZero() {
		sb.WriteString("\n\nCONTEXT PARAMETERS:\n")

		if params.DocumentID != "" {
			fmt.Fprintf(&sb, "- document_id: %s\n", params.DocumentID)
		}
		if params.Company != nil {
			sb.WriteString("- Company Attributes:\n")
			if params.Company.Size != "" {
				fmt.Fprintf(&sb, "  * size: %s\n", params.Company.Size)
			}
			if params.Company.Maturity != "" {
				fmt.Fprintf(&sb, "  * maturity: %s\n", params.Company.Maturity)
			}
			if params.Company.Industry != "" {
				fmt.Fprintf(&sb, "  * industry: %s\n", params.Company.Industry)
			}
		}
		if params.ManagementRole != "" {
			fmt.Fprintf(&sb, "- Management Role: %s\n", params.ManagementRole)
		}
		if params.ChallengeType != "" {
			fmt.Fprintf(&sb, "- Challenge Type: %s\n", params.ChallengeType)
		}
		if len(params.Environment) > 0 {
			sb.WriteString("- Environmental Factors:\n")
			for _, factor := range sortedKeys(params.Environment) {
				fmt.Fprintf(&sb, "  * %s: %s\n", factor, params.Environment[factor])
			}
		}
		if params.ManagementChallenge != "" {
			fmt.Fprintf(&sb, "- management_challenge: %s\n", params.ManagementChallenge)
		}
		for _, key := range sortedKeys(params.Extra) {
			fmt.Fprintf(&sb, "- %s: %s\n", key, params.Extra[key])
		}
	}

	sb.WriteString(synthesisPromptFooter)
	return sb.String()
}

// parseSynthesisOutput extracts the graph and connections from raw model
// text. Three shapes are accepted, tried in order: an envelope with both
// "graph" and "connections", an envelope with only "graph", and a bare tree
// as the whole object.
func parseSynthesisOutput(raw string) (*entities.GraphNode, []entities.Connection, error) {
	jsonStr, ok := textparse.ExtractJSONObject(raw)
	if !ok {
		return nil, nil, fmt.Errorf("no JSON object in model output")
	}

	var envelope synthesisEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &envelope); err == nil && envelope.Graph != nil {
		return envelope.Graph, envelope.Connections, nil
	}

	var root entities.GraphNode
	if err := json.Unmarshal([]byte(jsonStr), &root); err != nil {
		return nil, nil, fmt.Errorf("parsing graph JSON: %w", err)
	}
	if root.ID == "" && root.Title == "" {
		return nil, nil, fmt.Errorf("extracted object is not a graph")
	}
	return &root, nil, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FallbackTree is the deterministic graph returned when synthesis cannot
// produce a model-generated one. Fixed four-branch structure; only the root
// title depends on the input.
func FallbackTree(query string) *entities.GraphNode {
	return &entities.GraphNode{
		ID:          "root",
		Title:       query,
		Description: "Decision analysis based on the St. Gallen Management Model",
		Layer:       0,
		Relevance:   10,
		Children: []*entities.GraphNode{
			{
				ID:          "env_analysis",
				Title:       "Environmental & Stakeholder Analysis",
				Description: "Analysis of external factors and stakeholders",
				Layer:       1,
				Relevance:   8,
				Children: []*entities.GraphNode{
					{
						ID:          "external_factors",
						Title:       "External Factors",
						Description: "Consider technological, economic, and social influences",
						Layer:       2,
						Relevance:   7,
					},
					{
						ID:          "stakeholders",
						Title:       "Stakeholder Mapping",
						Description: "Identify and analyze key stakeholders",
						Layer:       2,
						Relevance:   7,
					},
				},
			},
			{
				ID:          "strategy",
				Title:       "Strategy & Business Model",
				Description: "Strategic considerations and business model design",
				Layer:       1,
				Relevance:   9,
				Children: []*entities.GraphNode{
					{
						ID:          "value_prop",
						Title:       "Value Proposition",
						Description: "Define the unique value offering",
						Layer:       2,
						Relevance:   8,
					},
					{
						ID:          "comp_advantage",
						Title:       "Competitive Advantage",
						Description: "Identify sustainable competitive advantages",
						Layer:       2,
						Relevance:   8,
					},
				},
			},
			{
				ID:          "organization",
				Title:       "Organizational Structure & Processes",
				Description: "Internal organizational considerations",
				Layer:       1,
				Relevance:   7,
				Children: []*entities.GraphNode{
					{
						ID:          "structure",
						Title:       "Organizational Structure",
						Description: "Design appropriate organizational structures",
						Layer:       2,
						Relevance:   6,
					},
					{
						ID:          "processes",
						Title:       "Management Processes",
						Description: "Establish effective management processes",
						Layer:       2,
						Relevance:   6,
					},
				},
			},
			{
				ID:          "implementation",
				Title:       "Implementation & Development",
				Description: "Approaches to implementation and change management",
				Layer:       1,
				Relevance:   8,
				Children: []*entities.GraphNode{
					{
						ID:          "change_mgmt",
						Title:       "Change Management",
						Description: "Manage organizational change effectively",
						Layer:       2,
						Relevance:   7,
					},
					{
						ID:          "impl_approach",
						Title:       "Implementation Approach",
						Description: "Plan the implementation strategy",
						Layer:       2,
						Relevance:   7,
					},
				},
			},
		},
	}
}
