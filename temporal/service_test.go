package temporal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/temporal"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

var (
	t1 = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t2 = t1.Add(time.Hour)
)

func model(name string, trainedOn ...string) schema.Record {
	r := schema.New(fair4ml.KindMLModel, "huggingface", "a/b")
	r.Set(fair4ml.Name, name, schema.Meta(schema.MethodParsed, 0.9, "modelId"))
	if len(trainedOn) > 0 {
		r.Set(fair4ml.TrainedOn, trainedOn, schema.Meta(schema.MethodLinked, 0.9, "tags"))
	}
	return r
}

func TestWriteMetadataCreatesOpenSnapshots(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)

	stats, err := svc.WriteMetadata(context.Background(), model("X", "https://example.org/d1"), t1)
	require.NoError(t, err)
	// identifier + name + trainedOn
	assert.Equal(t, 3, stats.SnapshotsCreated)
	assert.Zero(t, stats.SnapshotsClosed)
}

func TestTemporalMonotonicity(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)
	m := model("X", "https://example.org/d1")

	_, err := svc.WriteMetadata(context.Background(), m, t1)
	require.NoError(t, err)
	stats, err := svc.WriteMetadata(context.Background(), m, t2)
	require.NoError(t, err)

	assert.Zero(t, stats.SnapshotsCreated)
	assert.Zero(t, stats.SnapshotsClosed)
	assert.Equal(t, 3, stats.SnapshotsKept)
}

func TestTemporalClosureOnDroppedPredicate(t *testing.T) {
	store := temporal.NewMemoryStore()
	svc := temporal.NewService(store, nil)
	ctx := context.Background()

	withDataset := model("X", "https://example.org/d1")
	_, err := svc.WriteMetadata(ctx, withDataset, t1)
	require.NoError(t, err)

	without := model("X")
	stats, err := svc.WriteMetadata(ctx, without, t2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SnapshotsClosed)

	snapshots, err := store.SnapshotsForModel(ctx, withDataset.MLentoryIRI())
	require.NoError(t, err)
	for _, s := range snapshots {
		if s.PropertyIRI == fair4ml.TrainedOn {
			require.NotNil(t, s.ValidTo)
			assert.Equal(t, t2, *s.ValidTo)
		}
	}
}

func TestValueChangeClosesOldAndOpensNew(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.WriteMetadata(ctx, model("X", "https://example.org/d1"), t1)
	require.NoError(t, err)

	renamed := model("X-renamed", "https://example.org/d1", "https://example.org/d2")
	stats, err := svc.WriteMetadata(ctx, renamed, t2)
	require.NoError(t, err)

	// name changed (1 closed, 1 created), d2 added (1 created).
	assert.Equal(t, 1, stats.SnapshotsClosed)
	assert.Equal(t, 2, stats.SnapshotsCreated)

	at1, err := svc.Reconstruct(ctx, renamed.MLentoryIRI(), t1.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, at1[fair4ml.Name])
	assert.Equal(t, []string{"https://example.org/d1"}, at1[fair4ml.TrainedOn])

	at2, err := svc.Reconstruct(ctx, renamed.MLentoryIRI(), t2.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"X-renamed"}, at2[fair4ml.Name])
	assert.Equal(t, []string{"https://example.org/d1", "https://example.org/d2"}, at2[fair4ml.TrainedOn])
}

func TestMetadataOnlyChangeCreatesNewSnapshot(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)
	ctx := context.Background()

	first := model("X", "https://example.org/d1")
	_, err := svc.WriteMetadata(ctx, first, t1)
	require.NoError(t, err)

	second := model("X", "https://example.org/d1")
	second.SetMetadata(fair4ml.Name, schema.Meta(schema.MethodParsed, 0.95, "modelId"))
	stats, err := svc.WriteMetadata(ctx, second, t2)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SnapshotsCreated)
	assert.Equal(t, 1, stats.SnapshotsClosed)
}

func TestReconstructionBoundariesAreHalfOpen(t *testing.T) {
	store := temporal.NewMemoryStore()
	svc := temporal.NewService(store, nil)
	ctx := context.Background()

	m := model("X")
	_, err := svc.WriteMetadata(ctx, m, t1)
	require.NoError(t, err)
	renamed := model("Y")
	_, err = svc.WriteMetadata(ctx, renamed, t2)
	require.NoError(t, err)

	// At valid_from the snapshot is included.
	atFrom, err := svc.Reconstruct(ctx, m.MLentoryIRI(), t1)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, atFrom[fair4ml.Name])

	// At valid_to the closed snapshot is excluded, its successor included.
	atTo, err := svc.Reconstruct(ctx, m.MLentoryIRI(), t2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y"}, atTo[fair4ml.Name])
}

func TestReconstructBeforeAnyWriteIsEmpty(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)
	ctx := context.Background()

	m := model("X")
	_, err := svc.WriteMetadata(ctx, m, t1)
	require.NoError(t, err)

	early, err := svc.Reconstruct(ctx, m.MLentoryIRI(), t1.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, early)

	unknown, err := svc.Reconstruct(ctx, "https://example.org/unknown", t2)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestWriteMetadataBatchAggregates(t *testing.T) {
	svc := temporal.NewService(temporal.NewMemoryStore(), nil)

	a := model("A")
	b := schema.New(fair4ml.KindMLModel, "huggingface", "c/d")
	b.Set(fair4ml.Name, "B", schema.Meta(schema.MethodParsed, 1.0, "modelId"))

	stats, err := svc.WriteMetadataBatch(context.Background(), []schema.Record{a, b}, t1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Models)
	assert.Equal(t, 4, stats.SnapshotsCreated)
}
