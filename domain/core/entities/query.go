package entities

import "time"

// QueryStatus tracks the lifecycle of a synthesis request.
type QueryStatus string

const (
	QueryStatusProcessing QueryStatus = "processing"
	QueryStatusCompleted  QueryStatus = "completed"
	QueryStatusFailed     QueryStatus = "failed"
)

// Query is the record of one user question. A query may fail before
// producing a graph, so GraphID is empty until synthesis completes.
type Query struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Text          string         `json:"query_text"`
	ContextParams *ContextParams `json:"context_params,omitempty"`
	Status        QueryStatus    `json:"status"`
	GraphID       string         `json:"graph_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
