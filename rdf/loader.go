package rdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultBatchSize is the triple count flushed per store transaction.
const DefaultBatchSize = 5000

// Statement is one parameterized Cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Executor abstracts transactional write access to the triple store.
type Executor interface {
	// WriteBatch runs the statements inside one transaction.
	WriteBatch(ctx context.Context, stmts []Statement) error
}

// Neo4jExecutor runs statements against a Neo4j driver.
type Neo4jExecutor struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jExecutor wraps a driver.
func NewNeo4jExecutor(driver neo4j.DriverWithContext) *Neo4jExecutor {
	return &Neo4jExecutor{driver: driver}
}

// WriteBatch runs all statements in one managed write transaction.
func (e *Neo4jExecutor) WriteBatch(ctx context.Context, stmts []Statement) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			if _, err := tx.Run(ctx, stmt.Cypher, stmt.Params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("triple store write failed: %w", err)
	}
	return nil
}

// LoadReport summarizes one load of a normalized artifact.
type LoadReport struct {
	Kind          fair4ml.EntityKind `json:"kind"`
	Records       int                `json:"records"`
	Triples       int                `json:"triples"`
	Relationships int                `json:"relationships"`
	Duration      float64            `json:"duration_seconds"`
	TurtlePath    string             `json:"turtle_path,omitempty"`
}

// Loader persists normalized records as a property graph with RDF
// semantics and exports Turtle batches.
type Loader struct {
	exec      Executor
	logger    *slog.Logger
	batchSize int
}

// NewLoader creates a loader. batchSize <= 0 selects the default.
func NewLoader(exec Executor, logger *slog.Logger, batchSize int) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{exec: exec, logger: logger, batchSize: batchSize}
}

// EnsureConstraints creates the unique constraints the loaders and the
// temporal metadata writer rely on. Idempotent.
func (l *Loader) EnsureConstraints(ctx context.Context) error {
	stmts := make([]Statement, 0, len(fair4ml.AllKinds)+2)
	seen := map[string]bool{}
	for _, kind := range fair4ml.AllKinds {
		label := LabelForKind(kind)
		if seen[label] {
			continue
		}
		seen[label] = true
		stmts = append(stmts, Statement{
			Cypher: fmt.Sprintf(
				"CREATE CONSTRAINT IF NOT EXISTS FOR (n:`%s`) REQUIRE n.uri IS UNIQUE", label),
		})
	}
	stmts = append(stmts,
		Statement{Cypher: "CREATE CONSTRAINT IF NOT EXISTS FOR (n:ModelMeta) REQUIRE n.uri IS UNIQUE"},
		Statement{Cypher: "CREATE CONSTRAINT IF NOT EXISTS FOR (n:Property) REQUIRE n.iri IS UNIQUE"},
	)
	return l.exec.WriteBatch(ctx, stmts)
}

// Clean removes every node and relationship from the store.
func (l *Loader) Clean(ctx context.Context) error {
	l.logger.Warn("Cleaning triple store")
	return l.exec.WriteBatch(ctx, []Statement{{Cypher: "MATCH (n) DETACH DELETE n"}})
}

// LoadRecords persists records of one kind. Repeated loads of the same
// record replace its property set and outgoing edges rather than
// appending, so the triple set per subject stays idempotent.
func (l *Loader) LoadRecords(ctx context.Context, kind fair4ml.EntityKind, records []schema.Record) (*LoadReport, error) {
	report := &LoadReport{Kind: kind}
	start := time.Now()

	var batch []Statement
	var batchTriples int

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.exec.WriteBatch(ctx, batch); err != nil {
			return err
		}
		batch = nil
		batchTriples = 0
		return nil
	}

	for _, record := range records {
		triples := BuildTriples(kind, record)
		stmts, rels := recordStatements(kind, record, triples)
		batch = append(batch, stmts...)
		batchTriples += len(triples)
		report.Records++
		report.Triples += len(triples)
		report.Relationships += rels

		if batchTriples >= l.batchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	report.Duration = time.Since(start).Seconds()
	l.logger.Info("Loaded records",
		slog.String("kind", string(kind)),
		slog.Int("records", report.Records),
		slog.Int("triples", report.Triples))
	return report, nil
}

// recordStatements translates one record into upsert statements: a node
// rewrite followed by edge merges for link predicates.
func recordStatements(kind fair4ml.EntityKind, record schema.Record, triples []Triple) ([]Statement, int) {
	if len(triples) == 0 {
		return nil, 0
	}
	subject := triples[0].Subject
	label := LabelForKind(kind)

	props := map[string]any{"uri": subject}
	type edge struct {
		relType string
		target  string
		kind    fair4ml.EntityKind
	}
	var edges []edge

	for _, t := range triples {
		if t.Predicate == fair4ml.RDFType {
			continue
		}
		if relType, ok := RelationshipForPredicate[t.Predicate]; ok && t.Object.IRI {
			edges = append(edges, edge{
				relType: relType,
				target:  t.Object.Value,
				kind:    fair4ml.LinkPredicates[t.Predicate],
			})
			continue
		}
		key := ShortName(t.Predicate)
		switch existing := props[key].(type) {
		case nil:
			props[key] = t.Object.Value
		case string:
			props[key] = []string{existing, t.Object.Value}
		case []string:
			props[key] = append(existing, t.Object.Value)
		}
	}

	stmts := []Statement{{
		Cypher: fmt.Sprintf(
			"MERGE (n:`%s` {uri: $uri}) SET n = $props "+
				"WITH n OPTIONAL MATCH (n)-[r]->() DELETE r", label),
		Params: map[string]any{"uri": subject, "props": props},
	}}

	for _, e := range edges {
		stmts = append(stmts, Statement{
			Cypher: fmt.Sprintf(
				"MATCH (n:`%s` {uri: $uri}) "+
					"MERGE (m:`%s` {uri: $target}) "+
					"MERGE (n)-[:`%s`]->(m)",
				label, LabelForKind(e.kind), e.relType),
			Params: map[string]any{"uri": subject, "target": e.target},
		})
	}

	return stmts, len(edges)
}

// PersistAndExport streams the records of a normalized artifact into the
// store in batches and then writes a Turtle file restricted to the
// subjects written in this run.
func (l *Loader) PersistAndExport(ctx context.Context, kind fair4ml.EntityKind, jsonPath, ttlPath string) (*LoadReport, error) {
	records, err := schema.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}

	report, err := l.LoadRecords(ctx, kind, records)
	if err != nil {
		return report, err
	}

	if ttlPath != "" {
		exporter := NewTurtleExporter()
		for _, record := range records {
			exporter.Add(BuildTriples(kind, record)...)
		}
		if err := exporter.WriteFile(ttlPath, exporter.Subjects()); err != nil {
			return report, err
		}
		report.TurtlePath = ttlPath
	}

	return report, nil
}
