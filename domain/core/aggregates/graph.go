package aggregates

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"stratgraph/domain/core/entities"
	"stratgraph/domain/core/validators"
)

var (
	// ErrEmptyTree is returned when a graph is created without a root node.
	ErrEmptyTree = errors.New("graph requires a root node")
	// ErrEmptyQueryID is returned when a graph is created without the query
	// that produced it.
	ErrEmptyQueryID = errors.New("graph requires a query id")
)

// Graph is the aggregate root for one synthesized decision graph: the layered
// tree plus its flat cross-connection list. The tree is validated once at
// construction; everything handed out afterwards is safe to traverse without
// re-checking.
type Graph struct {
	id          string
	queryID     string
	userID      string
	root        *entities.GraphNode
	connections []entities.Connection
	createdAt   time.Time
	updatedAt   time.Time
}

// NewGraph builds a graph from freshly synthesized output. The tree is
// normalized in place (layers and relevance clamped to range) and rejected
// outright on structural problems such as duplicate node ids. Connections
// referencing unknown endpoints are kept as-is; they render as dangling
// edges rather than failing an otherwise good synthesis.
func NewGraph(queryID, userID string, root *entities.GraphNode, connections []entities.Connection) (*Graph, error) {
	if queryID == "" {
		return nil, ErrEmptyQueryID
	}
	if root == nil {
		return nil, ErrEmptyTree
	}
	if err := validators.ValidateTree(root); err != nil {
		return nil, err
	}
	validators.NormalizeTree(root)

	now := time.Now()
	return &Graph{
		id:          uuid.New().String(),
		queryID:     queryID,
		userID:      userID,
		root:        root,
		connections: connections,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructGraph rebuilds a graph from persisted state without running
// creation-time validation or minting a new id.
func ReconstructGraph(id, queryID, userID string, root *entities.GraphNode, connections []entities.Connection, createdAt, updatedAt time.Time) *Graph {
	return &Graph{
		id:          id,
		queryID:     queryID,
		userID:      userID,
		root:        root,
		connections: connections,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (g *Graph) ID() string                        { return g.id }
func (g *Graph) QueryID() string                   { return g.queryID }
func (g *Graph) UserID() string                    { return g.userID }
func (g *Graph) Root() *entities.GraphNode         { return g.root }
func (g *Graph) Connections() []entities.Connection { return g.connections }
func (g *Graph) CreatedAt() time.Time              { return g.createdAt }
func (g *Graph) UpdatedAt() time.Time              { return g.updatedAt }

// NodeCount returns the number of nodes in the tree.
func (g *Graph) NodeCount() int {
	if g.root == nil {
		return 0
	}
	return g.root.Count()
}

// ReplaceRoot swaps in a new tree, revalidating it. Used by graph updates;
// the update is last-write-wins, there is no version check.
func (g *Graph) ReplaceRoot(root *entities.GraphNode, connections []entities.Connection) error {
	if root == nil {
		return ErrEmptyTree
	}
	if err := validators.ValidateTree(root); err != nil {
		return err
	}
	validators.NormalizeTree(root)

	g.root = root
	g.connections = connections
	g.updatedAt = time.Now()
	return nil
}

// ConnectionsFor returns every connection touching the given node, in stored
// order.
func (g *Graph) ConnectionsFor(nodeID string) []entities.Connection {
	var out []entities.Connection
	for _, c := range g.connections {
		if c.Involves(nodeID) {
			out = append(out, c)
		}
	}
	return out
}

// FindNode locates a node in the tree by id.
func (g *Graph) FindNode(nodeID string) *entities.NodePath {
	return entities.FindNode(g.root, nodeID)
}
