package rdf_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/rdf"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// fakeExecutor records batches instead of talking to a store.
type fakeExecutor struct {
	batches [][]rdf.Statement
}

func (f *fakeExecutor) WriteBatch(_ context.Context, stmts []rdf.Statement) error {
	batch := make([]rdf.Statement, len(stmts))
	copy(batch, stmts)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeExecutor) statements() []rdf.Statement {
	var all []rdf.Statement
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func TestLoadRecordsEmitsNodeRewriteAndEdges(t *testing.T) {
	exec := &fakeExecutor{}
	loader := rdf.NewLoader(exec, nil, 0)

	report, err := loader.LoadRecords(context.Background(), fair4ml.KindMLModel, []schema.Record{testModel()})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 1, report.Relationships)
	assert.Greater(t, report.Triples, 2)

	stmts := exec.statements()
	require.NotEmpty(t, stmts)

	first := stmts[0]
	assert.Contains(t, first.Cypher, "MERGE (n:`MLModel` {uri: $uri})")
	assert.Contains(t, first.Cypher, "SET n = $props")
	assert.Contains(t, first.Cypher, "DELETE r")

	props := first.Params["props"].(map[string]any)
	assert.Equal(t, "a/b", props["name"])

	var sawEdge bool
	for _, s := range stmts[1:] {
		if strings.Contains(s.Cypher, "TRAINED_ON") {
			sawEdge = true
			assert.Contains(t, s.Cypher, "MERGE (m:`Dataset` {uri: $target})")
		}
	}
	assert.True(t, sawEdge)
}

func TestLoadRecordsBatchesByTripleCount(t *testing.T) {
	exec := &fakeExecutor{}
	loader := rdf.NewLoader(exec, nil, 4)

	records := []schema.Record{testModel(), testModel(), testModel()}
	_, err := loader.LoadRecords(context.Background(), fair4ml.KindMLModel, records)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(exec.batches), 2)
}

func TestPersistAndExportWritesTurtleForRunSubjects(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "mlmodels.json")
	ttlPath := filepath.Join(dir, "mlmodel.ttl")
	require.NoError(t, schema.WriteFile(jsonPath, []schema.Record{testModel()}))

	exec := &fakeExecutor{}
	loader := rdf.NewLoader(exec, nil, 0)

	report, err := loader.PersistAndExport(context.Background(), fair4ml.KindMLModel, jsonPath, ttlPath)
	require.NoError(t, err)
	assert.Equal(t, ttlPath, report.TurtlePath)

	matches, err := filepath.Glob(ttlPath)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLoadIdempotence(t *testing.T) {
	exec := &fakeExecutor{}
	loader := rdf.NewLoader(exec, nil, 0)
	records := []schema.Record{testModel()}

	r1, err := loader.LoadRecords(context.Background(), fair4ml.KindMLModel, records)
	require.NoError(t, err)
	r2, err := loader.LoadRecords(context.Background(), fair4ml.KindMLModel, records)
	require.NoError(t, err)

	// Identical input yields an identical statement stream: the node is
	// rewritten, never appended to.
	assert.Equal(t, r1.Triples, r2.Triples)
	require.Len(t, exec.batches, 2)
	assert.Equal(t, exec.batches[0], exec.batches[1])
}

func TestEnsureConstraintsCoversTemporalLabels(t *testing.T) {
	exec := &fakeExecutor{}
	loader := rdf.NewLoader(exec, nil, 0)
	require.NoError(t, loader.EnsureConstraints(context.Background()))

	joined := ""
	for _, s := range exec.statements() {
		joined += s.Cypher + "\n"
	}
	assert.Contains(t, joined, "ModelMeta")
	assert.Contains(t, joined, "Property")
	assert.Contains(t, joined, "MLModel")
}
