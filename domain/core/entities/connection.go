package entities

// Connection is a non-hierarchical typed edge between two nodes of the same
// graph. Connections live in a flat list next to the tree, are created in a
// batch alongside the graph and are immutable once written.
type Connection struct {
	SourceID         string `json:"source_id"`
	TargetID         string `json:"target_id"`
	RelationshipType string `json:"relationship_type"`
	Description      string `json:"description,omitempty"`
	Strength         int    `json:"strength,omitempty"`
}

// Involves reports whether the connection touches the given node on either
// end.
func (c Connection) Involves(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

// Other returns the id on the opposite end of the connection from nodeID.
// When nodeID is on neither end the target id is returned.
func (c Connection) Other(nodeID string) string {
	if c.TargetID == nodeID {
		return c.SourceID
	}
	return c.TargetID
}
