package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratgraph/domain/core/entities"
)

func TestValidateTree(t *testing.T) {
	t.Run("accepts well formed tree", func(t *testing.T) {
		root := &entities.GraphNode{
			ID: "root", Title: "Root",
			Children: []*entities.GraphNode{
				{ID: "a", Children: []*entities.GraphNode{{ID: "a1"}}},
				{ID: "b"},
			},
		}
		assert.NoError(t, ValidateTree(root))
	})

	t.Run("rejects nil root", func(t *testing.T) {
		assert.Error(t, ValidateTree(nil))
	})

	t.Run("rejects duplicate ids anywhere in the tree", func(t *testing.T) {
		root := &entities.GraphNode{
			ID: "root",
			Children: []*entities.GraphNode{
				{ID: "a"},
				{ID: "b", Children: []*entities.GraphNode{{ID: "a"}}},
			},
		}
		err := ValidateTree(root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate node id")
	})

	t.Run("rejects empty id", func(t *testing.T) {
		root := &entities.GraphNode{
			ID:       "root",
			Children: []*entities.GraphNode{{ID: ""}},
		}
		assert.Error(t, ValidateTree(root))
	})
}

func TestNormalizeTree(t *testing.T) {
	root := &entities.GraphNode{
		ID: "root", Layer: -1, Relevance: 99,
		Children: []*entities.GraphNode{
			{ID: "a", Layer: 7, Relevance: 0},
			{ID: "b", Layer: 2, Relevance: 6},
		},
	}
	NormalizeTree(root)

	assert.Equal(t, entities.MinLayer, root.Layer)
	assert.Equal(t, entities.MaxRelevance, root.Relevance)
	assert.Equal(t, entities.MaxLayer, root.Children[0].Layer)
	assert.Equal(t, entities.MinRelevance, root.Children[0].Relevance)
	assert.Equal(t, 2, root.Children[1].Layer)
	assert.Equal(t, 6, root.Children[1].Relevance)
}
