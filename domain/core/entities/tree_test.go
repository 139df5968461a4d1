package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterTestTree() *GraphNode {
	return &GraphNode{
		ID: "root", Title: "Root", Layer: 0, Relevance: 10,
		Children: []*GraphNode{
			{ID: "a", Title: "A", Layer: 1, Relevance: 10,
				Children: []*GraphNode{
					{ID: "a1", Title: "A1", Layer: 2, Relevance: 3},
					{ID: "a2", Title: "A2", Layer: 2, Relevance: 7,
						Children: []*GraphNode{
							{ID: "a2x", Title: "A2X", Layer: 3, Relevance: 9},
						}},
				}},
			{ID: "b", Title: "B", Layer: 1, Relevance: 4,
				Children: []*GraphNode{
					{ID: "b1", Title: "B1", Layer: 2, Relevance: 10},
				}},
		},
	}
}

func collectIDs(root *GraphNode) []string {
	var ids []string
	root.Walk(func(n *GraphNode, _ int) { ids = append(ids, n.ID) })
	return ids
}

func TestFilterByMaxLayer(t *testing.T) {
	t.Run("prunes layers above the limit", func(t *testing.T) {
		got := FilterByMaxLayer(filterTestTree(), 1)
		assert.Equal(t, []string{"root", "a", "b"}, collectIDs(got))
	})

	t.Run("keeps the whole tree when limit covers it", func(t *testing.T) {
		got := FilterByMaxLayer(filterTestTree(), 4)
		assert.Equal(t, []string{"root", "a", "a1", "a2", "a2x", "b", "b1"}, collectIDs(got))
	})

	t.Run("rejected root yields nil", func(t *testing.T) {
		assert.Nil(t, FilterByMaxLayer(filterTestTree(), -1))
		assert.Nil(t, FilterByMaxLayer(nil, 3))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := FilterByMaxLayer(filterTestTree(), 2)
		twice := FilterByMaxLayer(once, 2)
		assert.Equal(t, once, twice)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		tree := filterTestTree()
		before := tree.Count()
		_ = FilterByMaxLayer(tree, 0)
		assert.Equal(t, before, tree.Count())
	})
}

func TestFilterByMinRelevance(t *testing.T) {
	t.Run("a rejected node drops its whole subtree", func(t *testing.T) {
		// b has relevance 4; b1 scores 10 but still goes with its parent.
		got := FilterByMinRelevance(filterTestTree(), 5)
		assert.Equal(t, []string{"root", "a", "a2", "a2x"}, collectIDs(got))
	})

	t.Run("monotone in the threshold", func(t *testing.T) {
		tree := filterTestTree()
		prev := tree.Count()
		for threshold := 1; threshold <= 10; threshold++ {
			got := FilterByMinRelevance(tree, threshold)
			count := 0
			if got != nil {
				count = got.Count()
			}
			assert.LessOrEqual(t, count, prev, "threshold %d", threshold)
			prev = count
		}
	})

	t.Run("rejected root yields nil", func(t *testing.T) {
		tree := &GraphNode{ID: "root", Relevance: 3, Children: []*GraphNode{{ID: "a", Relevance: 10}}}
		assert.Nil(t, FilterByMinRelevance(tree, 7))
	})
}

func TestFindNode(t *testing.T) {
	tree := filterTestTree()

	t.Run("finds nested node with full path and level", func(t *testing.T) {
		got := FindNode(tree, "a2x")
		require.NotNil(t, got)
		assert.Equal(t, "a2x", got.Node.ID)
		assert.Equal(t, 3, got.Level)

		pathIDs := make([]string, 0, len(got.Path))
		for _, n := range got.Path {
			pathIDs = append(pathIDs, n.ID)
		}
		assert.Equal(t, []string{"root", "a", "a2", "a2x"}, pathIDs)
	})

	t.Run("root match has single-element path", func(t *testing.T) {
		got := FindNode(tree, "root")
		require.NotNil(t, got)
		assert.Equal(t, 0, got.Level)
		require.Len(t, got.Path, 1)
		assert.Equal(t, "root", got.Path[0].ID)
	})

	t.Run("absent id yields nil", func(t *testing.T) {
		assert.Nil(t, FindNode(tree, "nope"))
		assert.Nil(t, FindNode(nil, "root"))
	})
}

func TestGraphNodeClone(t *testing.T) {
	tree := filterTestTree()
	tree.Examples = []Example{{Title: "e", Description: "d"}}

	clone := tree.Clone()
	require.Equal(t, tree, clone)

	clone.Children[0].Title = "changed"
	clone.Examples[0].Title = "changed"
	assert.Equal(t, "A", tree.Children[0].Title)
	assert.Equal(t, "e", tree.Examples[0].Title)
}
