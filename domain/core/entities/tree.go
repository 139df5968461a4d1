package entities

// Tree operations are pure: they never mutate their input and return fresh
// copies, so concurrent requests can filter independently loaded trees
// without coordination.

// DefaultMinRelevance is applied when a relevance filter is requested
// without an explicit threshold.
const DefaultMinRelevance = 5

// NodePath describes a located node together with its ancestor chain.
// Path runs from the root to the node inclusive; Level is the node's depth
// below the root (root = 0).
type NodePath struct {
	Node  *GraphNode   `json:"node"`
	Path  []*GraphNode `json:"path"`
	Level int          `json:"level"`
}

// FilterByMaxLayer returns a copy of the tree with every node whose layer
// exceeds maxLayer pruned. Pruning a node drops its whole subtree, even
// when a descendant's own layer would pass. Returns nil when the root
// itself is rejected.
func FilterByMaxLayer(node *GraphNode, maxLayer int) *GraphNode {
	if node == nil || node.Layer > maxLayer {
		return nil
	}

	filtered := copyNode(node)
	for _, child := range node.Children {
		if fc := FilterByMaxLayer(child, maxLayer); fc != nil {
			filtered.Children = append(filtered.Children, fc)
		}
	}
	return filtered
}

// FilterByMinRelevance returns a copy of the tree keeping only nodes with
// relevance >= minRelevance. Same pruning shape as FilterByMaxLayer: a
// rejected node takes its whole subtree with it.
func FilterByMinRelevance(node *GraphNode, minRelevance int) *GraphNode {
	if node == nil || node.Relevance < minRelevance {
		return nil
	}

	filtered := copyNode(node)
	for _, child := range node.Children {
		if fc := FilterByMinRelevance(child, minRelevance); fc != nil {
			filtered.Children = append(filtered.Children, fc)
		}
	}
	return filtered
}

// FindNode locates targetID by depth-first pre-order search and returns the
// node with its full ancestor path and depth. Returns nil when the id is
// absent. With duplicate ids the first match wins; duplicates are a
// data-quality bug, not a supported case.
func FindNode(root *GraphNode, targetID string) *NodePath {
	if root == nil {
		return nil
	}
	return findNode(root, targetID, nil, 0)
}

func findNode(node *GraphNode, targetID string, ancestors []*GraphNode, level int) *NodePath {
	if node.ID == targetID {
		path := make([]*GraphNode, 0, len(ancestors)+1)
		path = append(path, ancestors...)
		path = append(path, node)
		return &NodePath{Node: node, Path: path, Level: level}
	}

	for _, child := range node.Children {
		if result := findNode(child, targetID, append(ancestors, node), level+1); result != nil {
			return result
		}
	}
	return nil
}

// copyNode copies a single node without its children; examples are copied
// so the filtered tree shares nothing mutable with the source.
func copyNode(node *GraphNode) *GraphNode {
	c := *node
	c.Children = nil
	if node.Examples != nil {
		c.Examples = append([]Example(nil), node.Examples...)
	}
	return &c
}
