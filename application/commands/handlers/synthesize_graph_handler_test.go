package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stratgraph/application/commands"
	"stratgraph/application/ports"
	"stratgraph/application/services"
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	"stratgraph/domain/events"
	apperrors "stratgraph/pkg/errors"
)

type memQueryRepo struct {
	saved   []*entities.Query
	saveErr error
}

func (r *memQueryRepo) Save(_ context.Context, q *entities.Query) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *q
	r.saved = append(r.saved, &clone)
	return nil
}

func (r *memQueryRepo) GetByID(_ context.Context, id string) (*entities.Query, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ID == id {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func (r *memQueryRepo) GetByUserID(_ context.Context, _ string) ([]*entities.Query, error) {
	return r.saved, nil
}

type memGraphRepo struct {
	saved   []*aggregates.Graph
	saveErr error
}

func (r *memGraphRepo) Save(_ context.Context, g *aggregates.Graph) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, g)
	return nil
}

func (r *memGraphRepo) GetByID(_ context.Context, id string) (*aggregates.Graph, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ID() == id {
			return r.saved[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("graph '" + id + "'")
}

func (r *memGraphRepo) GetByQueryID(_ context.Context, _ string) (*aggregates.Graph, error) {
	return nil, nil
}

func (r *memGraphRepo) GetByUserID(_ context.Context, _ string) ([]*aggregates.Graph, error) {
	return r.saved, nil
}

func (r *memGraphRepo) Delete(_ context.Context, _ string) error { return nil }

type memPublisher struct {
	published []events.DomainEvent
}

func (p *memPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *memPublisher) PublishBatch(_ context.Context, evts []events.DomainEvent) error {
	p.published = append(p.published, evts...)
	return nil
}

type scriptedCompleter struct {
	text string
	err  error
}

func (c *scriptedCompleter) Complete(_ context.Context, _ ports.CompletionRequest) (string, error) {
	return c.text, c.err
}

type emptyRetriever struct{}

func (emptyRetriever) Search(_ context.Context, _ string, _ int) ([]ports.Passage, error) {
	return nil, nil
}

func newHandler(queryRepo *memQueryRepo, graphRepo *memGraphRepo, publisher *memPublisher, completer ports.Completer) *SynthesizeGraphHandler {
	logger := zap.NewNop()
	synthesizer := services.NewSynthesizer(completer, services.NewContextBuilder(emptyRetriever{}, logger), logger)
	return NewSynthesizeGraphHandler(queryRepo, graphRepo, synthesizer, publisher, logger)
}

func TestSynthesizeGraphHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path completes query and publishes event", func(t *testing.T) {
		queryRepo := &memQueryRepo{}
		graphRepo := &memGraphRepo{}
		publisher := &memPublisher{}
		completer := &scriptedCompleter{text: `{"id": "n0", "title": "Root", "layer": 0, "relevance": 10, "children": []}`}
		h := newHandler(queryRepo, graphRepo, publisher, completer)

		result, err := h.Handle(ctx, commands.SynthesizeGraphCommand{UserID: "u1", QueryText: "how to scale"})
		require.NoError(t, err)
		require.NotNil(t, result.Graph)

		assert.Equal(t, entities.QueryStatusCompleted, result.Query.Status)
		assert.Equal(t, result.Graph.ID(), result.Query.GraphID)
		require.Len(t, graphRepo.saved, 1)

		// first save processing, second save completed
		require.Len(t, queryRepo.saved, 2)
		assert.Equal(t, entities.QueryStatusProcessing, queryRepo.saved[0].Status)
		assert.Equal(t, entities.QueryStatusCompleted, queryRepo.saved[1].Status)

		require.Len(t, publisher.published, 1)
		assert.Equal(t, "graph.generated", publisher.published[0].GetEventType())
	})

	t.Run("model failure still succeeds via fallback tree", func(t *testing.T) {
		queryRepo := &memQueryRepo{}
		graphRepo := &memGraphRepo{}
		publisher := &memPublisher{}
		completer := &scriptedCompleter{err: assert.AnError}
		h := newHandler(queryRepo, graphRepo, publisher, completer)

		result, err := h.Handle(ctx, commands.SynthesizeGraphCommand{UserID: "u1", QueryText: "how to scale"})
		require.NoError(t, err)
		assert.Equal(t, "how to scale", result.Graph.Root().Title)
		assert.Equal(t, entities.QueryStatusCompleted, result.Query.Status)
	})

	t.Run("duplicate ids from the model fail the query", func(t *testing.T) {
		queryRepo := &memQueryRepo{}
		graphRepo := &memGraphRepo{}
		publisher := &memPublisher{}
		completer := &scriptedCompleter{text: `{"id": "n0", "title": "Root", "layer": 0, "relevance": 10,
			"children": [{"id": "n0", "title": "Dup", "layer": 1, "relevance": 5, "children": []}]}`}
		h := newHandler(queryRepo, graphRepo, publisher, completer)

		_, err := h.Handle(ctx, commands.SynthesizeGraphCommand{UserID: "u1", QueryText: "q"})
		require.Error(t, err)

		require.Len(t, queryRepo.saved, 2)
		assert.Equal(t, entities.QueryStatusFailed, queryRepo.saved[1].Status)
		require.Len(t, publisher.published, 1)
		assert.Equal(t, "query.failed", publisher.published[0].GetEventType())
		assert.Empty(t, graphRepo.saved)
	})

	t.Run("graph save failure marks query failed", func(t *testing.T) {
		queryRepo := &memQueryRepo{}
		graphRepo := &memGraphRepo{saveErr: assert.AnError}
		publisher := &memPublisher{}
		completer := &scriptedCompleter{text: `{"id": "n0", "title": "Root", "layer": 0, "relevance": 10, "children": []}`}
		h := newHandler(queryRepo, graphRepo, publisher, completer)

		_, err := h.Handle(ctx, commands.SynthesizeGraphCommand{UserID: "u1", QueryText: "q"})
		require.Error(t, err)
		assert.Equal(t, entities.QueryStatusFailed, queryRepo.saved[len(queryRepo.saved)-1].Status)
	})
}
