package entities

// Layer and relevance bounds for graph nodes. Layer 0 is the central
// decision, layer 4 the most concrete practical application.
const (
	MinLayer = 0
	MaxLayer = 4

	MinRelevance = 1
	MaxRelevance = 10
)

// Example is a concrete illustration of a node's concept, either produced
// inline by the generator or synthesized on demand and cached on the node.
type Example struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GraphNode is one concept in a decision graph. Nodes form a tree: a parent
// exclusively owns its children, so there are no cycles by construction.
// IDs are unique within a graph; duplicates are rejected at creation time.
type GraphNode struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Layer       int          `json:"layer"`
	Relevance   int          `json:"relevance"`
	Children    []*GraphNode `json:"children"`
	Examples    []Example    `json:"examples,omitempty"`
}

// Clone returns a deep copy of the node and its entire subtree.
func (n *GraphNode) Clone() *GraphNode {
	if n == nil {
		return nil
	}

	c := *n
	if n.Examples != nil {
		c.Examples = append([]Example(nil), n.Examples...)
	}
	if n.Children != nil {
		c.Children = make([]*GraphNode, 0, len(n.Children))
		for _, child := range n.Children {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return &c
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *GraphNode) Count() int {
	if n == nil {
		return 0
	}

	count := 1
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}

// Walk visits the subtree in depth-first pre-order. The callback receives
// each node with its depth relative to n (n itself is depth 0).
func (n *GraphNode) Walk(visit func(node *GraphNode, depth int)) {
	if n == nil {
		return
	}
	n.walk(0, visit)
}

func (n *GraphNode) walk(depth int, visit func(node *GraphNode, depth int)) {
	visit(n, depth)
	for _, child := range n.Children {
		child.walk(depth+1, visit)
	}
}
