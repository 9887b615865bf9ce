package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/pipeline"
)

func newRun(t *testing.T) *pipeline.Run {
	t.Helper()
	run, err := pipeline.NewRun(t.TempDir())
	require.NoError(t, err)
	return run
}

func noop(name string) pipeline.StageFunc {
	return func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
		return pipeline.PathArtifact(name), nil
	}
}

func TestMaterializeRespectsDependencyOrder(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)

	var mu sync.Mutex
	var order []string
	record := func(name string) pipeline.StageFunc {
		return func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return pipeline.PathArtifact(name), nil
		}
	}

	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "extract", Run: record("extract")}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "normalize", Inputs: []string{"extract"}, Run: record("normalize")}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "load", Inputs: []string{"normalize"}, Run: record("load")}))

	results, err := p.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"extract", "normalize", "load"}, order)
}

func TestMaterializePassesUpstreamArtifacts(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)

	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "a", Run: func(ctx context.Context, _ map[string]pipeline.Artifact) (pipeline.Artifact, error) {
		return pipeline.Artifact{Path: "a.json", Values: map[string]any{"count": 7}}, nil
	}}))
	var seen pipeline.Artifact
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "b", Inputs: []string{"a"}, Run: func(ctx context.Context, inputs map[string]pipeline.Artifact) (pipeline.Artifact, error) {
		seen = inputs["a"]
		return pipeline.PathArtifact("b.json"), nil
	}}))

	_, err := p.Materialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.json", seen.Path)
	assert.Equal(t, 7, seen.Value("count"))
}

func TestMaterializeFailureHaltsOnlyDownstreamBranch(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)

	boom := errors.New("boom")
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "extract", Run: noop("extract")}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "broken", Inputs: []string{"extract"}, Run: func(ctx context.Context, _ map[string]pipeline.Artifact) (pipeline.Artifact, error) {
		return pipeline.Artifact{}, boom
	}}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "downstream", Inputs: []string{"broken"}, Run: noop("downstream")}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "sibling", Inputs: []string{"extract"}, Run: noop("sibling")}))

	results, err := p.Materialize(context.Background())
	require.Error(t, err)

	assert.Equal(t, pipeline.StatusSucceeded, results["extract"].Status)
	assert.Equal(t, pipeline.StatusFailed, results["broken"].Status)
	assert.Equal(t, pipeline.StatusSkipped, results["downstream"].Status)
	assert.Equal(t, pipeline.StatusSucceeded, results["sibling"].Status)
}

func TestMaterializeRejectsUnknownInput(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "a", Inputs: []string{"ghost"}, Run: noop("a")}))
	_, err := p.Materialize(context.Background())
	assert.Error(t, err)
}

func TestMaterializeDetectsCycle(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "a", Inputs: []string{"b"}, Run: noop("a")}))
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "b", Inputs: []string{"a"}, Run: noop("b")}))
	_, err := p.Materialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestAddStageRejectsDuplicates(t *testing.T) {
	run := newRun(t)
	p := pipeline.New(run, nil)
	require.NoError(t, p.AddStage(&pipeline.Stage{Name: "a", Run: noop("a")}))
	assert.Error(t, p.AddStage(&pipeline.Stage{Name: "a", Run: noop("a")}))
}

func TestRunFolderLayout(t *testing.T) {
	root := t.TempDir()
	run, err := pipeline.NewRun(root)
	require.NoError(t, err)

	dir, err := run.Dir(pipeline.TierRaw, "huggingface")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "1_raw", "huggingface", run.ID), dir)

	other, err := pipeline.NewRun(root)
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, other.ID)
}

func TestArtifactJSONRoundTripAndDiscover(t *testing.T) {
	root := t.TempDir()
	run, err := pipeline.NewRun(root)
	require.NoError(t, err)

	path := run.Path(pipeline.TierNormalized, "huggingface", "mlmodels.json")
	require.NoError(t, pipeline.WriteJSON(path, map[string]int{"n": 3}))

	var loaded map[string]int
	require.NoError(t, pipeline.ReadJSON(path, &loaded))
	assert.Equal(t, 3, loaded["n"])

	matches, err := pipeline.Discover(filepath.Join(root, "2_normalized", "**", "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, path, matches[0])
}
