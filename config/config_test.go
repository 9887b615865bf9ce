package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbmed-semtec/mlentory/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, config.DefaultConfig().Validate())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_config.yaml")
	content := `
general:
  default_threads: 8
  data_root: /tmp/mlentory
platforms:
  huggingface:
    num_models: 25
    update_recent: true
    base_model_iterations: 3
clean_neo4j_database: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.General.DefaultThreads)
	assert.Equal(t, "/tmp/mlentory", cfg.General.DataRoot)
	assert.True(t, cfg.CleanNeo4jDatabase)

	hf := cfg.Platform("huggingface")
	assert.Equal(t, 25, hf.NumModels)
	assert.True(t, hf.UpdateRecent)
	assert.Equal(t, 3, hf.BaseModelIterations)
}

func TestPlatformFillsThreadDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.DefaultThreads = 6
	cfg.Platforms["custom"] = config.PlatformConfig{NumInstances: 10}

	p := cfg.Platform("custom")
	assert.Equal(t, 6, p.Threads)
	assert.Equal(t, 6, p.EnrichmentThreads)
	assert.Equal(t, 10, p.NumModels)
}

func TestValidateRejectsNegativeCounts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platforms["huggingface"] = config.PlatformConfig{NumModels: -1}
	assert.Error(t, cfg.Validate())
}

func TestLoadSecretsRequiresStores(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	t.Setenv("ELASTICSEARCH_HOST", "")

	loader := config.NewLoader(nil)
	_, err := loader.LoadSecrets(true)
	assert.Error(t, err)

	s, err := loader.LoadSecrets(false)
	require.NoError(t, err)
	assert.Equal(t, "9200", s.ElasticsearchPort)
}
