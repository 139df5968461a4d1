package commands

import (
	"errors"

	"stratgraph/domain/core/entities"
)

// UpdateGraphCommand represents the command to replace a graph's tree and
// connections. Updates are last write wins.
type UpdateGraphCommand struct {
	GraphID     string                `json:"graph_id" validate:"required"`
	UserID      string                `json:"user_id"`
	Root        *entities.GraphNode   `json:"graph" validate:"required"`
	Connections []entities.Connection `json:"connections,omitempty"`
}

// Validate validates the command
func (cmd UpdateGraphCommand) Validate() error {
	if cmd.GraphID == "" {
		return errors.New("graph ID is required")
	}
	if cmd.Root == nil {
		return errors.New("graph root is required")
	}
	return nil
}
