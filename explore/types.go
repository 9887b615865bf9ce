// Package explore serves graph-neighborhood queries over the property
// graph: a start entity, its outgoing edges, and its depth-1 neighbors.
package explore

import "errors"

// ErrUnsupported marks traversal options the service does not
// implement.
var ErrUnsupported = errors.New("unsupported traversal option")

// ErrEntityNotFound marks a start entity absent from the graph.
var ErrEntityNotFound = errors.New("entity not found")

// Traversal directions. Only outgoing traversal is implemented; the
// interface accepts the other values for forward compatibility and
// rejects them with ErrUnsupported.
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
	DirectionBoth     = "both"
)

// Request is one exploration query.
type Request struct {
	EntityID      string   `json:"entity_id"`
	Depth         int      `json:"depth,omitempty"`
	Direction     string   `json:"direction,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
	EntityLabel   string   `json:"entity_label,omitempty"`
}

// Node is one graph node in a response. Properties carries the node's
// literal properties plus, for the start node, its edge targets keyed
// by relationship type.
type Node struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Edge is one start-node edge.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	Center    string `json:"center"`
	Depth     int    `json:"depth"`
	Direction string `json:"direction"`
}

// Result is one exploration response.
type Result struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}
