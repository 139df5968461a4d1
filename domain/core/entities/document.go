package entities

import "time"

// Document is a source text indexed for retrieval.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Author    string            `json:"author,omitempty"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
