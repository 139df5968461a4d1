package sqlitevec

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stratgraph/application/ports"
)

// stubEmbedder maps each distinct text to a fixed-dimension vector so that
// identical texts are nearest neighbours of each other.
type stubEmbedder struct {
	dim int
}

func (e stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for i, r := range text {
		vec[i%e.dim] += float32(r) / 1000
	}
	return vec, nil
}

func openTestIndex(t *testing.T, dim int) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "chunks.db"), stubEmbedder{dim: dim}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSearchBeforeAnyIndexReturnsNothing(t *testing.T) {
	idx := openTestIndex(t, 4)

	passages, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestIndexAndSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, 4)

	err := idx.IndexChunks(ctx, []ports.DocumentChunk{
		{DocumentID: "doc-1", DocumentTitle: "Pricing", ChunkIndex: 0, Text: "pricing models for platforms"},
		{DocumentID: "doc-1", DocumentTitle: "Pricing", ChunkIndex: 1, Text: "completely different subject matter"},
	})
	require.NoError(t, err)

	passages, err := idx.Search(ctx, "pricing models for platforms", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "doc-1", passages[0].DocumentID)
	assert.Equal(t, 0, passages[0].ChunkIndex)
	assert.InDelta(t, 1.0, passages[0].Score, 0.01, "identical text scores near 1")
}

func TestReindexReplacesDocumentChunks(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, 4)

	require.NoError(t, idx.IndexChunks(ctx, []ports.DocumentChunk{
		{DocumentID: "doc-1", DocumentTitle: "Old", ChunkIndex: 0, Text: "old content"},
	}))
	require.NoError(t, idx.IndexChunks(ctx, []ports.DocumentChunk{
		{DocumentID: "doc-1", DocumentTitle: "New", ChunkIndex: 0, Text: "new content"},
	}))

	passages, err := idx.Search(ctx, "content", 10)
	require.NoError(t, err)
	require.Len(t, passages, 1, "old chunks replaced, not appended")
	assert.Equal(t, "New", passages[0].DocumentTitle)
}

func TestIndexRejectsDimensionChange(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, 4)

	require.NoError(t, idx.IndexChunks(ctx, []ports.DocumentChunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Text: "first"},
	}))

	idx.embedder = stubEmbedder{dim: 8}
	err := idx.IndexChunks(ctx, []ports.DocumentChunk{
		{DocumentID: "doc-2", ChunkIndex: 0, Text: "second"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestConcurrentIndexAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, 4)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			err := idx.IndexChunks(ctx, []ports.DocumentChunk{
				{DocumentID: fmt.Sprintf("doc-%d", n), ChunkIndex: 0, Text: fmt.Sprintf("chunk %d", n)},
			})
			assert.NoError(t, err)
		}(n)
		go func() {
			defer wg.Done()
			_, err := idx.Search(ctx, "chunk", 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
