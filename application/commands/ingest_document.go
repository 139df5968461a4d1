package commands

import "errors"

// IngestDocumentCommand represents the command to store a source document
// and make it searchable
type IngestDocumentCommand struct {
	Title    string            `json:"title" validate:"required"`
	Author   string            `json:"author,omitempty"`
	Content  string            `json:"content" validate:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate validates the command
func (cmd IngestDocumentCommand) Validate() error {
	if cmd.Title == "" {
		return errors.New("document title is required")
	}
	if cmd.Content == "" {
		return errors.New("document content is required")
	}
	return nil
}
