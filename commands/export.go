package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/rdf"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var platform, runID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a run's normalized records as Turtle",
		Long: `Rebuilds the RDF serialization of a finished run from its normalized
artifacts. No store connection is needed; the run folders are the
source of truth.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}

			pattern := filepath.Join(cfg.General.DataRoot,
				pipeline.TierNormalized, platform, runID, "*.json")
			files, err := pipeline.Discover(pattern)
			if err != nil {
				return err
			}

			exporter := rdf.NewTurtleExporter()
			var records int
			for _, file := range files {
				name := strings.TrimSuffix(filepath.Base(file), ".json")
				kind := fair4ml.EntityKind(name)
				if !knownKind(kind) {
					continue
				}
				batch, err := schema.ReadFile(file)
				if err != nil {
					return err
				}
				for _, r := range batch {
					exporter.Add(rdf.BuildTriples(kind, r)...)
				}
				records += len(batch)
			}
			if records == 0 {
				return fmt.Errorf("no normalized records under %s", pattern)
			}

			if err := exporter.WriteFile(out, exporter.Subjects()); err != nil {
				return err
			}
			logger.Info("Export written", "path", out, "records", records)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "huggingface", "Platform whose run to export")
	cmd.Flags().StringVar(&runID, "run", "*", "Run id (defaults to all runs)")
	cmd.Flags().StringVar(&out, "out", "mlentory_export.ttl", "Output Turtle file")
	return cmd
}

func knownKind(kind fair4ml.EntityKind) bool {
	for _, k := range fair4ml.AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}
