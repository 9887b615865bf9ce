package explore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// GraphStore reads nodes and edges from the property graph.
type GraphStore interface {
	// Node returns the labels and literal properties of a node, or
	// ErrEntityNotFound.
	Node(ctx context.Context, iri string) (*Node, error)
	// OutgoingEdges returns a node's outgoing edges, optionally
	// restricted to the given relationship types.
	OutgoingEdges(ctx context.Context, iri string, relationships []string) ([]Edge, error)
}

// Service runs depth-1 neighborhood traversals.
type Service struct {
	store  GraphStore
	logger *slog.Logger
}

// NewService creates the exploration service.
func NewService(store GraphStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// labelKinds maps entity labels to the kind used for IRI
// reconstruction from short ids.
var labelKinds = map[string]fair4ml.EntityKind{
	"MLModel":          fair4ml.KindMLModel,
	"ScholarlyArticle": fair4ml.KindArticle,
	"CreativeWork":     fair4ml.KindLicense,
	"Dataset":          fair4ml.KindDataset,
	"DefinedTerm":      fair4ml.KindKeyword,
	"Language":         fair4ml.KindLanguage,
}

// ResolveIRI reconstructs the full entity IRI from a short id, using
// the entity label to pick the kind. Full IRIs pass through unchanged.
func ResolveIRI(entityID, entityLabel string) string {
	if strings.HasPrefix(entityID, "http://") || strings.HasPrefix(entityID, "https://") {
		return entityID
	}
	kind, ok := labelKinds[entityLabel]
	if !ok {
		kind = fair4ml.KindMLModel
	}
	return fair4ml.EntityIRI(kind, entityID)
}

// Explore fetches the start entity, its outgoing edges, and its
// depth-1 neighbors. Edge targets are merged into each node's property
// map keyed by relationship type; only start-node edges appear in the
// edge list, and neighbors are not expanded further.
func (s *Service) Explore(ctx context.Context, req Request) (*Result, error) {
	if req.Direction == "" {
		req.Direction = DirectionOutgoing
	}
	if req.Direction != DirectionOutgoing {
		return nil, fmt.Errorf("direction %q: %w", req.Direction, ErrUnsupported)
	}
	if req.Depth > 1 {
		return nil, fmt.Errorf("depth %d: %w", req.Depth, ErrUnsupported)
	}

	iri := ResolveIRI(req.EntityID, req.EntityLabel)
	start, err := s.store.Node(ctx, iri)
	if err != nil {
		return nil, err
	}

	edges, err := s.store.OutgoingEdges(ctx, iri, req.Relationships)
	if err != nil {
		return nil, err
	}
	mergeEdges(start, edges)

	result := &Result{
		Nodes: []Node{*start},
		Edges: edges,
		Metadata: Metadata{
			Center:    iri,
			Depth:     1,
			Direction: DirectionOutgoing,
		},
	}

	seen := map[string]bool{iri: true}
	for _, edge := range edges {
		if seen[edge.Target] {
			continue
		}
		seen[edge.Target] = true

		neighbor, err := s.store.Node(ctx, edge.Target)
		if err != nil {
			s.logger.Debug("skipping unresolvable neighbor", "target", edge.Target, "error", err)
			continue
		}
		neighborEdges, err := s.store.OutgoingEdges(ctx, edge.Target, nil)
		if err != nil {
			return nil, err
		}
		mergeEdges(neighbor, neighborEdges)
		result.Nodes = append(result.Nodes, *neighbor)
	}
	return result, nil
}

// mergeEdges folds edge targets into the node's property map keyed by
// relationship type, once per (type, target).
func mergeEdges(node *Node, edges []Edge) {
	if node.Properties == nil {
		node.Properties = map[string]any{}
	}
	for _, edge := range edges {
		existing, _ := node.Properties[edge.Type].([]string)
		duplicate := false
		for _, target := range existing {
			if target == edge.Target {
				duplicate = true
				break
			}
		}
		if !duplicate {
			node.Properties[edge.Type] = append(existing, edge.Target)
		}
	}
}
