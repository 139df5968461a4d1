package commands

import (
	"errors"

	"stratgraph/domain/core/entities"
)

// MaxQueryLength bounds the accepted query text.
const MaxQueryLength = 2000

// SynthesizeGraphCommand represents the command to synthesize a decision
// graph for a user query
type SynthesizeGraphCommand struct {
	UserID        string                  `json:"user_id"`
	QueryText     string                  `json:"query" validate:"required"`
	ContextParams *entities.ContextParams `json:"context,omitempty"`
}

// Validate validates the command
func (cmd SynthesizeGraphCommand) Validate() error {
	if cmd.QueryText == "" {
		return errors.New("query text is required")
	}
	if len(cmd.QueryText) > MaxQueryLength {
		return errors.New("query text exceeds maximum length")
	}
	return nil
}
