package queries

import "errors"

// GetQueryStatusQuery represents a lookup of a synthesis request's lifecycle
// state
type GetQueryStatusQuery struct {
	QueryID string `json:"query_id"`
}

// Validate validates the query
func (q GetQueryStatusQuery) Validate() error {
	if q.QueryID == "" {
		return errors.New("queryID is required")
	}
	return nil
}
