package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/infrastructure/config"
	apperrors "stratgraph/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.Config{
		OpenAIAPIKey:   "test-key",
		OpenAIBaseURL:  server.URL,
		LLMModel:       "gpt-test",
		EmbeddingModel: "embed-test",
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestCompleteReturnsModelText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))

	text, err := client.Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestCompleteClassifiesFailuresAsGeneration(t *testing.T) {
	// 400 is not retryable, so the client fails fast.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))

	_, err := client.Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.IsGeneration(err))
}

func TestCompleteWithNoChoicesIsGeneration(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))

	_, err := client.Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.IsGeneration(err))
}

func TestEmbedClassifiesFailuresAsExternal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))

	_, err := client.Embed(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestEmbedReturnsVector(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`))
	}))

	vec, err := client.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}
