// Package openai is a minimal chat-completions and embeddings client built
// directly on net/http.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/infrastructure/config"
	apperrors "stratgraph/pkg/errors"
)

const (
	defaultTimeout = 120 * time.Second
	maxRetries     = 3
)

// Client implements ports.Completer and ports.Embedder against the OpenAI
// HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new OpenAI client from application configuration
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.LLMModel,
		embedModel: cfg.EmbeddingModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete runs one chat completion and returns the raw model text
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp chatResponse
	if err := c.do(ctx, "/chat/completions", body, &resp); err != nil {
		return "", apperrors.NewGenerationError("completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewGenerationError("completion", fmt.Errorf("completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		input = " "
	}

	body := embeddingsRequest{Model: c.embedModel, Input: []string{input}}

	var resp embeddingsResponse
	if err := c.do(ctx, "/embeddings", body, &resp); err != nil {
		return nil, apperrors.NewExternalError("openai", err)
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.NewExternalError("openai", fmt.Errorf("embeddings returned no data"))
	}
	return resp.Data[0].Embedding, nil
}

// do posts the request, retrying rate limits and server errors with
// exponential backoff.
func (c *Client) do(ctx context.Context, path string, body, out interface{}) error {
	backoff := time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("decoding response: %w", uErr)
			}
			return nil
		}
		lastErr = err

		if !retryable(status) || attempt == maxRetries {
			return lastErr
		}

		c.logger.Warn("OpenAI request retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Int("status", status),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, path string, body interface{}) (int, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, raw, fmt.Errorf("openai returned %d: %s", resp.StatusCode, truncateBody(raw))
	}
	return resp.StatusCode, raw, nil
}

func retryable(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func truncateBody(raw []byte) string {
	const max = 512
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
