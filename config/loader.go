package config

import (
	"fmt"
	"log/slog"
	"os"
)

// Loader resolves configuration and secrets for a process.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the YAML config at path, or defaults when path is empty.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		l.logger.Debug("No config file given, using defaults")
		return DefaultConfig(), nil
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded config", slog.String("path", path))
	return cfg, nil
}

// LoadSecrets reads store credentials from the environment. Neo4j and
// Elasticsearch credentials are required for serve and load commands;
// callers that only extract may pass require=false.
func (l *Loader) LoadSecrets(require bool) (Secrets, error) {
	s := Secrets{
		Neo4jURI:              os.Getenv("NEO4J_URI"),
		Neo4jUser:             os.Getenv("NEO4J_USER"),
		Neo4jPassword:         os.Getenv("NEO4J_PASSWORD"),
		ElasticsearchHost:     os.Getenv("ELASTICSEARCH_HOST"),
		ElasticsearchPort:     os.Getenv("ELASTICSEARCH_PORT"),
		ElasticsearchUser:     os.Getenv("ELASTICSEARCH_USER"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		NATSURL:               os.Getenv("NATS_URL"),
		HFToken:               os.Getenv("HF_TOKEN"),
	}
	if s.ElasticsearchPort == "" {
		s.ElasticsearchPort = "9200"
	}
	if require {
		if s.Neo4jURI == "" {
			return s, fmt.Errorf("NEO4J_URI is required")
		}
		if s.ElasticsearchHost == "" {
			return s, fmt.Errorf("ELASTICSEARCH_HOST is required")
		}
	}
	return s, nil
}

// ElasticsearchAddress returns the document store base URL.
func (s Secrets) ElasticsearchAddress() string {
	return fmt.Sprintf("http://%s:%s", s.ElasticsearchHost, s.ElasticsearchPort)
}
