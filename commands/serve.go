package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zbmed-semtec/mlentory/api"
	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/explore"
	"github.com/zbmed-semtec/mlentory/search"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search and graph API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, logger, err := opts.setup()
			if err != nil {
				return err
			}
			secrets, err := config.NewLoader(logger).LoadSecrets(true)
			if err != nil {
				return err
			}

			driver, err := neo4j.NewDriverWithContext(secrets.Neo4jURI,
				neo4j.BasicAuth(secrets.Neo4jUser, secrets.Neo4jPassword, ""))
			if err != nil {
				return fmt.Errorf("failed to create neo4j driver: %w", err)
			}
			defer driver.Close(ctx)

			es, err := elasticsearch.NewClient(elasticsearch.Config{
				Addresses: []string{secrets.ElasticsearchAddress()},
				Username:  secrets.ElasticsearchUser,
				Password:  secrets.ElasticsearchPassword,
			})
			if err != nil {
				return fmt.Errorf("failed to create elasticsearch client: %w", err)
			}

			server := api.NewServer(
				search.NewService(es, logger),
				explore.NewService(explore.NewNeo4jStore(driver), logger),
				prometheus.NewRegistry(),
				logger,
			)
			server.AddHealthCheck("neo4j", func(ctx context.Context) error {
				return driver.VerifyConnectivity(ctx)
			})
			server.AddHealthCheck("elasticsearch", func(ctx context.Context) error {
				res, err := es.Ping(es.Ping.WithContext(ctx))
				if err != nil {
					return err
				}
				defer res.Body.Close()
				if res.IsError() {
					return fmt.Errorf("elasticsearch ping: %s", res.Status())
				}
				return nil
			})

			err = server.ListenAndServe(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
