// Package config provides configuration loading and management for MLentory.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete MLentory ETL and serving configuration.
type Config struct {
	General   GeneralConfig             `yaml:"general"`
	Platforms map[string]PlatformConfig `yaml:"platforms"`

	// CleanNeo4jDatabase wipes the triple store before the load stage.
	CleanNeo4jDatabase bool `yaml:"clean_neo4j_database"`

	// CleanElasticsearchIndex wipes the document index before indexing.
	CleanElasticsearchIndex bool `yaml:"clean_elasticsearch_index"`
}

// GeneralConfig holds pipeline-wide settings.
type GeneralConfig struct {
	// DefaultThreads is the worker-pool size used when a platform does
	// not declare its own.
	DefaultThreads int `yaml:"default_threads"`

	// DataRoot is the directory that owns all run folders.
	DataRoot string `yaml:"data_root"`

	// RefsDir holds curated reference files (keyword CSV, task catalog,
	// model id snapshots).
	RefsDir string `yaml:"refs_dir"`
}

// PlatformConfig holds per-platform extraction knobs.
type PlatformConfig struct {
	// NumModels caps the number of primary records fetched.
	NumModels int `yaml:"num_models"`

	// NumInstances is an alias for NumModels used by registry platforms.
	NumInstances int `yaml:"num_instances"`

	// Offset skips the first N records of the platform listing.
	Offset int `yaml:"offset"`

	// Threads is the extraction worker-pool size.
	Threads int `yaml:"threads"`

	// EnrichmentThreads is the enrichment worker-pool size.
	EnrichmentThreads int `yaml:"enrichment_threads"`

	// UpdateRecent restricts extraction to recently modified records.
	UpdateRecent bool `yaml:"update_recent"`

	// BaseModelIterations caps the iterative base-model expansion.
	BaseModelIterations int `yaml:"base_model_iterations"`

	// EnableScraping turns on web scraping for registries whose stats
	// are not exposed over an API.
	EnableScraping bool `yaml:"enable_scraping"`

	// ModelsFilePath points at a newline-delimited id snapshot; when set
	// the extractor fetches exactly these ids.
	ModelsFilePath string `yaml:"models_file_path"`

	// BaseURL overrides the platform API endpoint (tests, mirrors).
	BaseURL string `yaml:"base_url"`

	// ParentID scopes catalog platforms to a parent collection.
	ParentID string `yaml:"parent_id"`
}

// Secrets holds store credentials loaded from the environment.
type Secrets struct {
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	ElasticsearchHost     string
	ElasticsearchPort     string
	ElasticsearchUser     string
	ElasticsearchPassword string

	RedisAddr string
	NATSURL   string
	HFToken   string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DefaultThreads: 4,
			DataRoot:       "./data",
			RefsDir:        "./refs",
		},
		Platforms: map[string]PlatformConfig{
			"huggingface": {
				NumModels:           100,
				Threads:             4,
				EnrichmentThreads:   4,
				BaseModelIterations: 2,
			},
			"openml": {
				NumInstances:      100,
				Threads:           2,
				EnrichmentThreads: 2,
			},
			"bioimage": {
				Threads:           2,
				EnrichmentThreads: 2,
			},
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.General.DefaultThreads < 1 {
		return fmt.Errorf("general.default_threads must be at least 1")
	}
	if c.General.DataRoot == "" {
		return fmt.Errorf("general.data_root is required")
	}
	for name, p := range c.Platforms {
		if p.Threads < 0 || p.EnrichmentThreads < 0 {
			return fmt.Errorf("platforms.%s: thread counts must be non-negative", name)
		}
		if p.NumModels < 0 || p.NumInstances < 0 || p.Offset < 0 {
			return fmt.Errorf("platforms.%s: record counts must be non-negative", name)
		}
		if p.BaseModelIterations < 0 {
			return fmt.Errorf("platforms.%s: base_model_iterations must be non-negative", name)
		}
	}
	return nil
}

// Platform returns the configuration for a platform, filling thread
// counts from the general defaults.
func (c *Config) Platform(name string) PlatformConfig {
	p := c.Platforms[name]
	if p.Threads == 0 {
		p.Threads = c.General.DefaultThreads
	}
	if p.EnrichmentThreads == 0 {
		p.EnrichmentThreads = c.General.DefaultThreads
	}
	if p.NumModels == 0 && p.NumInstances > 0 {
		p.NumModels = p.NumInstances
	}
	return p
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// HTTPTimeout is the default timeout for platform and enrichment HTTP
// clients.
const HTTPTimeout = 30 * time.Second
