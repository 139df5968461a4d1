package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Graph Events

// GraphGenerated is raised when synthesis produces and persists a new graph
type GraphGenerated struct {
	BaseEvent
	GraphID   string `json:"graph_id"`
	QueryID   string `json:"query_id"`
	UserID    string `json:"user_id"`
	NodeCount int    `json:"node_count"`
}

// NewGraphGenerated creates a GraphGenerated event
func NewGraphGenerated(graphID, queryID, userID string, nodeCount int, timestamp time.Time) GraphGenerated {
	return GraphGenerated{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.generated",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID:   graphID,
		QueryID:   queryID,
		UserID:    userID,
		NodeCount: nodeCount,
	}
}

// QueryFailed is raised when a synthesis request fails after the query
// record was already created
type QueryFailed struct {
	BaseEvent
	QueryID string `json:"query_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
}

// NewQueryFailed creates a QueryFailed event
func NewQueryFailed(queryID, userID, reason string, timestamp time.Time) QueryFailed {
	return QueryFailed{
		BaseEvent: BaseEvent{
			AggregateID: queryID,
			EventType:   "query.failed",
			Timestamp:   timestamp,
			Version:     1,
		},
		QueryID: queryID,
		UserID:  userID,
		Reason:  reason,
	}
}

// DocumentIndexed is raised when a document has been chunked, embedded and
// made searchable
type DocumentIndexed struct {
	BaseEvent
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// NewDocumentIndexed creates a DocumentIndexed event
func NewDocumentIndexed(documentID, title string, chunkCount int, timestamp time.Time) DocumentIndexed {
	return DocumentIndexed{
		BaseEvent: BaseEvent{
			AggregateID: documentID,
			EventType:   "document.indexed",
			Timestamp:   timestamp,
			Version:     1,
		},
		DocumentID: documentID,
		Title:      title,
		ChunkCount: chunkCount,
	}
}
