package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratgraph/application/ports"
	"stratgraph/domain/core/entities"
)

func TestAugmentQuery(t *testing.T) {
	t.Run("no params leaves query untouched", func(t *testing.T) {
		assert.Equal(t, "scaling strategy", AugmentQuery("scaling strategy", nil))
		assert.Equal(t, "scaling strategy", AugmentQuery("scaling strategy", &entities.ContextParams{}))
	})

	t.Run("full company profile and challenge in fixed order", func(t *testing.T) {
		params := &entities.ContextParams{
			Company: &entities.CompanyProfile{
				Size:     "small",
				Maturity: "growth",
				Industry: "fintech",
			},
			ManagementChallenge: "scaling",
		}
		got := AugmentQuery("how to restructure", params)
		assert.Equal(t, "how to restructure for small sized company in growth stage in fintech industry facing scaling challenge ", got)
	})

	t.Run("unrelated params still mark the query as situated", func(t *testing.T) {
		params := &entities.ContextParams{DocumentID: "doc-1"}
		assert.Equal(t, "q for ", AugmentQuery("q", params))
	})
}

func TestBuildContext(t *testing.T) {
	ctx := context.Background()

	t.Run("formats passages as numbered blocks", func(t *testing.T) {
		retriever := &fakeRetriever{passages: []ports.Passage{
			{Text: "first passage"},
			{Text: "second passage"},
		}}
		builder := NewContextBuilder(retriever, testLogger())

		got, err := builder.BuildContext(ctx, "query", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, "PASSAGE 1:\nfirst passage\n\nPASSAGE 2:\nsecond passage", got)
	})

	t.Run("empty retrieval yields sentinel", func(t *testing.T) {
		builder := NewContextBuilder(&fakeRetriever{}, testLogger())

		got, err := builder.BuildContext(ctx, "query", nil, 8)
		require.NoError(t, err)
		assert.Equal(t, NoRelevantInformation, got)
	})

	t.Run("searches with the augmented query", func(t *testing.T) {
		retriever := &fakeRetriever{}
		builder := NewContextBuilder(retriever, testLogger())

		params := &entities.ContextParams{ManagementChallenge: "churn"}
		_, err := builder.BuildContext(ctx, "retention", params, 8)
		require.NoError(t, err)
		require.Len(t, retriever.queries, 1)
		assert.Equal(t, "retention for facing churn challenge ", retriever.queries[0])
	})

	t.Run("propagates retriever errors", func(t *testing.T) {
		retriever := &fakeRetriever{err: assert.AnError}
		builder := NewContextBuilder(retriever, testLogger())

		_, err := builder.BuildContext(ctx, "query", nil, 8)
		assert.Error(t, err)
	})
}
