package validators

import (
	"fmt"

	"stratgraph/domain/core/entities"
)

// ValidateTree checks structural soundness of a synthesized tree. Duplicate
// node ids fail the whole tree: every later lookup, filter and connection
// resolution keys on the id, so a silently dropped duplicate would surface
// as wrong chat context or a dangling edge much later.
func ValidateTree(root *entities.GraphNode) error {
	if root == nil {
		return fmt.Errorf("tree has no root")
	}

	seen := make(map[string]struct{})
	var walk func(n *entities.GraphNode) error
	walk = func(n *entities.GraphNode) error {
		if n.ID == "" {
			return fmt.Errorf("node %q has an empty id", n.Title)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		for _, child := range n.Children {
			if child == nil {
				return fmt.Errorf("node %q has a nil child", n.ID)
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// NormalizeTree clamps out-of-range layer and relevance values in place.
// Model output is probabilistic; a layer of 7 or relevance of 0 is noise to
// absorb, not a reason to fail synthesis.
func NormalizeTree(root *entities.GraphNode) {
	if root == nil {
		return
	}
	root.Walk(func(n *entities.GraphNode, _ int) {
		n.Layer = clamp(n.Layer, entities.MinLayer, entities.MaxLayer)
		n.Relevance = clamp(n.Relevance, entities.MinRelevance, entities.MaxRelevance)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
