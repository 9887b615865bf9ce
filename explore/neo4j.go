package explore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore reads the property graph written by the RDF loader.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore wraps a driver.
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{driver: driver}
}

// Node implements GraphStore.
func (n *Neo4jStore) Node(ctx context.Context, iri string) (*Node, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			`MATCH (n {uri: $uri}) RETURN labels(n) AS labels, properties(n) AS props LIMIT 1`,
			map[string]any{"uri": iri})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("node query failed: %w", err)
	}

	records := result.([]*neo4j.Record)
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", iri, ErrEntityNotFound)
	}

	node := &Node{ID: iri, Properties: map[string]any{}}
	if raw, ok := records[0].Get("labels"); ok {
		if labels, ok := raw.([]any); ok {
			for _, label := range labels {
				if s, ok := label.(string); ok {
					node.Labels = append(node.Labels, s)
				}
			}
		}
	}
	if raw, ok := records[0].Get("props"); ok {
		if props, ok := raw.(map[string]any); ok {
			node.Properties = props
		}
	}
	return node, nil
}

// OutgoingEdges implements GraphStore.
func (n *Neo4jStore) OutgoingEdges(ctx context.Context, iri string, relationships []string) ([]Edge, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `MATCH (n {uri: $uri})-[r]->(t)
		WHERE size($types) = 0 OR type(r) IN $types
		RETURN type(r) AS type, t.uri AS target`
	params := map[string]any{"uri": iri, "types": relationships}
	if relationships == nil {
		params["types"] = []string{}
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("edge query failed: %w", err)
	}

	var edges []Edge
	for _, record := range result.([]*neo4j.Record) {
		edgeType, _ := record.Get("type")
		target, _ := record.Get("target")
		typeStr, _ := edgeType.(string)
		targetStr, _ := target.(string)
		if typeStr == "" || targetStr == "" {
			continue
		}
		edges = append(edges, Edge{Source: iri, Target: targetStr, Type: typeStr})
	}
	return edges, nil
}
