package queries

import (
	"errors"
	"strconv"
)

// FilterGraphQuery represents a relevance-threshold filter over a stored
// graph. A nil MinRelevance applies the default threshold.
type FilterGraphQuery struct {
	GraphID      string `json:"graph_id"`
	MinRelevance *int   `json:"min_relevance,omitempty"`
}

// Validate validates the query
func (q FilterGraphQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphID is required")
	}
	if q.MinRelevance != nil && (*q.MinRelevance < 1 || *q.MinRelevance > 10) {
		return errors.New("minRelevance must be between 1 and 10")
	}
	return nil
}

// CacheKey builds the cache key from dereferenced values so that equal
// queries share an entry regardless of pointer identity
func (q FilterGraphQuery) CacheKey() string {
	min := "default"
	if q.MinRelevance != nil {
		min = strconv.Itoa(*q.MinRelevance)
	}
	return GraphCacheKeyPrefix(q.GraphID) + "filter:min=" + min
}
