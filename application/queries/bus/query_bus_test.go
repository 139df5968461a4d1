package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratgraph/application/queries"
)

type mapCache struct {
	entries map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]interface{})}
}

func (c *mapCache) Get(_ context.Context, key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.entries[key] = value
	return nil
}

type countingHandler struct {
	calls   int
	results []interface{}
}

func (h *countingHandler) Handle(_ context.Context, _ Query) (interface{}, error) {
	result := h.results[h.calls%len(h.results)]
	h.calls++
	return result, nil
}

func TestCachingMiddlewareSharesEntryAcrossEqualQueries(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	handler := &countingHandler{results: []interface{}{"first"}}
	wrapped := NewCachingMiddleware(cache, 60).Wrap(handler)

	// Separate allocations with the same value must hit the same entry.
	layerA, layerB := 2, 2
	res1, err := wrapped.Handle(ctx, queries.GetGraphQuery{GraphID: "g1", MaxLayer: &layerA})
	require.NoError(t, err)
	res2, err := wrapped.Handle(ctx, queries.GetGraphQuery{GraphID: "g1", MaxLayer: &layerB})
	require.NoError(t, err)

	assert.Equal(t, 1, handler.calls, "second query served from cache")
	assert.Equal(t, res1, res2)
}

func TestCachingMiddlewareKeysOnThresholdValue(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	handler := &countingHandler{results: []interface{}{"layer2", "layer4"}}
	wrapped := NewCachingMiddleware(cache, 60).Wrap(handler)

	// Mutating one allocation must not alias the previous entry.
	layer := 2
	res1, err := wrapped.Handle(ctx, queries.GetGraphQuery{GraphID: "g1", MaxLayer: &layer})
	require.NoError(t, err)

	layer = 4
	res2, err := wrapped.Handle(ctx, queries.GetGraphQuery{GraphID: "g1", MaxLayer: &layer})
	require.NoError(t, err)

	assert.Equal(t, 2, handler.calls)
	assert.Equal(t, "layer2", res1)
	assert.Equal(t, "layer4", res2)
}

func TestGraphQueryCacheKeys(t *testing.T) {
	layer := 3
	min := 7

	get := queries.GetGraphQuery{GraphID: "g1", MaxLayer: &layer, WithConnections: true}
	filter := queries.FilterGraphQuery{GraphID: "g1", MinRelevance: &min}

	prefix := queries.GraphCacheKeyPrefix("g1")
	assert.True(t, len(get.CacheKey()) > len(prefix) && get.CacheKey()[:len(prefix)] == prefix)
	assert.True(t, len(filter.CacheKey()) > len(prefix) && filter.CacheKey()[:len(prefix)] == prefix)

	assert.NotEqual(t, get.CacheKey(), queries.GetGraphQuery{GraphID: "g1"}.CacheKey())
	assert.NotEqual(t, filter.CacheKey(), queries.FilterGraphQuery{GraphID: "g1"}.CacheKey())
	assert.NotEqual(t, get.CacheKey(), queries.GetGraphQuery{GraphID: "g2", MaxLayer: &layer, WithConnections: true}.CacheKey())
}
