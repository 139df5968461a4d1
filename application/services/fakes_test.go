package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"stratgraph/application/ports"
)

// fakeCompleter replays scripted outcomes in call order. Reuses the last
// outcome when calls outnumber the script.
type fakeCompleter struct {
	mu       sync.Mutex
	outcomes []completionOutcome
	requests []ports.CompletionRequest
}

type completionOutcome struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx >= len(f.outcomes) {
		idx = len(f.outcomes) - 1
	}
	outcome := f.outcomes[idx]
	return outcome.text, outcome.err
}

type fakeRetriever struct {
	passages []ports.Passage
	err      error
	queries  []string
}

func (f *fakeRetriever) Search(_ context.Context, query string, _ int) ([]ports.Passage, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
