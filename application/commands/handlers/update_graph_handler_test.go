package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/queries"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
)

type memCache struct {
	entries map[string]interface{}
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]interface{})}
}

func (c *memCache) Get(_ context.Context, key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memCache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memCache) Clear(_ context.Context) error {
	c.entries = make(map[string]interface{})
	return nil
}

func savedGraph(t *testing.T, repo *memGraphRepo, userID string) *aggregates.Graph {
	t.Helper()
	root := &entities.GraphNode{ID: "root", Title: "Strategy", Layer: 0, Relevance: 10}
	graph, err := aggregates.NewGraph("q1", userID, root, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), graph))
	return graph
}

func TestUpdateGraphHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces tree and invalidates cached reads", func(t *testing.T) {
		graphRepo := &memGraphRepo{}
		graph := savedGraph(t, graphRepo, "u1")

		cache := newMemCache()
		getKey := queries.GetGraphQuery{GraphID: graph.ID()}.CacheKey()
		filterKey := queries.FilterGraphQuery{GraphID: graph.ID()}.CacheKey()
		otherKey := queries.GetGraphQuery{GraphID: "other-graph"}.CacheKey()
		cache.Set(ctx, getKey, "stale", 300)
		cache.Set(ctx, filterKey, "stale", 300)
		cache.Set(ctx, otherKey, "untouched", 300)

		h := NewUpdateGraphHandler(graphRepo, cache, zap.NewNop())
		err := h.Handle(ctx, commands.UpdateGraphCommand{
			GraphID: graph.ID(),
			UserID:  "u1",
			Root:    &entities.GraphNode{ID: "root", Title: "Revised strategy", Layer: 0, Relevance: 9},
		})
		require.NoError(t, err)

		updated, err := graphRepo.GetByID(ctx, graph.ID())
		require.NoError(t, err)
		assert.Equal(t, "Revised strategy", updated.Root().Title)

		_, found := cache.Get(ctx, getKey)
		assert.False(t, found, "whole-graph read invalidated")
		_, found = cache.Get(ctx, filterKey)
		assert.False(t, found, "filtered read invalidated")
		_, found = cache.Get(ctx, otherKey)
		assert.True(t, found, "other graphs keep their entries")
	})

	t.Run("rejects update by another user", func(t *testing.T) {
		graphRepo := &memGraphRepo{}
		graph := savedGraph(t, graphRepo, "u1")

		cache := newMemCache()
		key := queries.GetGraphQuery{GraphID: graph.ID()}.CacheKey()
		cache.Set(ctx, key, "kept", 300)

		h := NewUpdateGraphHandler(graphRepo, cache, zap.NewNop())
		err := h.Handle(ctx, commands.UpdateGraphCommand{
			GraphID: graph.ID(),
			UserID:  "u2",
			Root:    &entities.GraphNode{ID: "root", Title: "Hijack", Layer: 0, Relevance: 1},
		})
		require.Error(t, err)

		_, found := cache.Get(ctx, key)
		assert.True(t, found, "failed update leaves the cache alone")
	})

	t.Run("rejects invalid replacement tree", func(t *testing.T) {
		graphRepo := &memGraphRepo{}
		graph := savedGraph(t, graphRepo, "u1")

		h := NewUpdateGraphHandler(graphRepo, newMemCache(), zap.NewNop())
		err := h.Handle(ctx, commands.UpdateGraphCommand{
			GraphID: graph.ID(),
			UserID:  "u1",
			Root: &entities.GraphNode{ID: "root", Title: "Dup", Layer: 0, Relevance: 5,
				Children: []*entities.GraphNode{{ID: "root", Title: "Dup child", Layer: 1, Relevance: 5}}},
		})
		require.Error(t, err)
	})
}
