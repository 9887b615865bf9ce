package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore persists snapshots as the ModelMeta / PropertySnapshot /
// Property subgraph. Concurrent runs touching the same model are
// serialized by the store's per-node locking on the ModelMeta node,
// backed by the unique constraints created at load time.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore wraps a driver.
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{driver: driver}
}

// OpenSnapshots implements Store.
func (n *Neo4jStore) OpenSnapshots(ctx context.Context, modelURI, propertyIRI string) ([]Snapshot, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (m:ModelMeta {uri: $uri})-[:HAS_PROPERTY]->(s:PropertySnapshot)-[:OF_PROPERTY]->(p:Property {iri: $iri})
			WHERE s.valid_to IS NULL
			RETURN s.hash AS hash, s.value AS value, s.value_uri AS value_uri, s.valid_from AS valid_from`,
			map[string]any{"uri": modelURI, "iri": propertyIRI})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot query failed: %w", err)
	}

	var out []Snapshot
	for _, record := range records.([]*neo4j.Record) {
		out = append(out, snapshotFromRecord(record, modelURI, propertyIRI))
	}
	return out, nil
}

// CloseSnapshots implements Store.
func (n *Neo4jStore) CloseSnapshots(ctx context.Context, modelURI, propertyIRI string, hashes []string, at time.Time) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (m:ModelMeta {uri: $uri})-[:HAS_PROPERTY]->(s:PropertySnapshot)-[:OF_PROPERTY]->(p:Property {iri: $iri})
			WHERE s.valid_to IS NULL AND s.hash IN $hashes
			SET s.valid_to = $at`,
			map[string]any{"uri": modelURI, "iri": propertyIRI, "hashes": hashes, "at": at.UTC()})
	})
	if err != nil {
		return fmt.Errorf("snapshot close failed: %w", err)
	}
	return nil
}

// CreateSnapshots implements Store. All snapshots are written in a
// single transaction; the MERGE on ModelMeta takes the node lock that
// serializes concurrent runs on the same model.
func (n *Neo4jStore) CreateSnapshots(ctx context.Context, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, s := range snapshots {
			if _, err := tx.Run(ctx, `
				MERGE (m:ModelMeta {uri: $uri})
				MERGE (p:Property {iri: $iri})
				CREATE (s:PropertySnapshot {
					hash: $hash, value: $value, value_uri: $value_uri,
					valid_from: $valid_from, valid_to: null
				})
				CREATE (m)-[:HAS_PROPERTY]->(s)
				CREATE (s)-[:OF_PROPERTY]->(p)`,
				map[string]any{
					"uri":        s.ModelURI,
					"iri":        s.PropertyIRI,
					"hash":       s.Hash,
					"value":      s.Value,
					"value_uri":  s.ValueURI,
					"valid_from": s.ValidFrom.UTC(),
				}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("snapshot create failed: %w", err)
	}
	return nil
}

// SnapshotsForModel implements Store.
func (n *Neo4jStore) SnapshotsForModel(ctx context.Context, modelURI string) ([]Snapshot, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (m:ModelMeta {uri: $uri})-[:HAS_PROPERTY]->(s:PropertySnapshot)-[:OF_PROPERTY]->(p:Property)
			RETURN p.iri AS iri, s.hash AS hash, s.value AS value, s.value_uri AS value_uri,
			       s.valid_from AS valid_from, s.valid_to AS valid_to`,
			map[string]any{"uri": modelURI})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot query failed: %w", err)
	}

	var out []Snapshot
	for _, record := range records.([]*neo4j.Record) {
		iri, _ := record.Get("iri")
		snap := snapshotFromRecord(record, modelURI, asString(iri))
		if validTo, ok := record.Get("valid_to"); ok {
			if t, ok := asTime(validTo); ok {
				snap.ValidTo = &t
			}
		}
		out = append(out, snap)
	}
	return out, nil
}

func snapshotFromRecord(record *neo4j.Record, modelURI, propertyIRI string) Snapshot {
	hash, _ := record.Get("hash")
	value, _ := record.Get("value")
	valueURI, _ := record.Get("value_uri")
	snap := Snapshot{
		ModelURI:    modelURI,
		PropertyIRI: propertyIRI,
		Hash:        asString(hash),
		Value:       asString(value),
		ValueURI:    asString(valueURI),
	}
	if validFrom, ok := record.Get("valid_from"); ok {
		if t, ok := asTime(validFrom); ok {
			snap.ValidFrom = t
		}
	}
	return snap
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}
