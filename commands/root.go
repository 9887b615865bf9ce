// Package commands implements the mlentory CLI: the extraction
// pipeline, the HTTP API server, Turtle export and point-in-time
// metadata reconstruction.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zbmed-semtec/mlentory/config"
)

// Version is stamped at build time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "mlentory"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRoot builds the mlentory command tree.
func NewRoot() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "FAIR metadata pipeline for ML model registries",
		Long: `MLentory extracts ML model metadata from HuggingFace, OpenML and the
BioImage Model Zoo, normalizes it to a FAIR schema, and serves it as a
searchable knowledge graph.

Pipeline stores: Neo4j (graph), Elasticsearch (search index),
optionally Redis (enrichment cache) and NATS (run events).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newETLCommand(opts),
		newServeCommand(opts),
		newExportCommand(opts),
		newReconstructCommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// setup resolves the logger and configuration for a subcommand.
func (o *rootOptions) setup() (*config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(o.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
