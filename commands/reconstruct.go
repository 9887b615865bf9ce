package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/temporal"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

func newReconstructCommand(opts *rootOptions) *cobra.Command {
	var model, at string

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct a model's metadata at a point in time",
		Long: `Queries the temporal metadata subgraph for the property values of a
model that were current at the given instant and prints them as JSON.
The model may be given as a full IRI or a short id.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, logger, err := opts.setup()
			if err != nil {
				return err
			}
			secrets, err := config.NewLoader(logger).LoadSecrets(false)
			if err != nil {
				return err
			}
			if secrets.Neo4jURI == "" {
				return fmt.Errorf("NEO4J_URI is required")
			}

			instant := time.Now().UTC()
			if at != "" {
				instant, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
			}

			modelURI := model
			if !strings.Contains(modelURI, "://") {
				modelURI = fair4ml.EntityIRI(fair4ml.KindMLModel, model)
			}

			driver, err := neo4j.NewDriverWithContext(secrets.Neo4jURI,
				neo4j.BasicAuth(secrets.Neo4jUser, secrets.Neo4jPassword, ""))
			if err != nil {
				return fmt.Errorf("failed to create neo4j driver: %w", err)
			}
			defer driver.Close(ctx)

			service := temporal.NewService(temporal.NewNeo4jStore(driver), logger)
			properties, err := service.Reconstruct(ctx, modelURI, instant)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"model":      modelURI,
				"at":         instant.Format(time.RFC3339),
				"properties": properties,
			})
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model IRI or short id")
	cmd.Flags().StringVar(&at, "at", "", "Instant to reconstruct (RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
