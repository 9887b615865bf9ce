package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zbmed-semtec/mlentory/config"
	"github.com/zbmed-semtec/mlentory/events"
	"github.com/zbmed-semtec/mlentory/index"
	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/rdf"
	"github.com/zbmed-semtec/mlentory/temporal"
)

func newETLCommand(opts *rootOptions) *cobra.Command {
	var platforms []string
	var skipLoad bool

	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Run the extraction pipeline",
		Long: `Runs the full extraction pipeline for the selected platforms:
extract, identify, enrich, normalize, load, temporal write and index.
With --skip-load the pipeline stops after normalization, so no store
credentials are needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runETL(ctx, opts, platforms, skipLoad)
		},
	}

	cmd.Flags().StringSliceVar(&platforms, "platforms",
		[]string{"huggingface", "openml", "bioimage"}, "Platforms to process")
	cmd.Flags().BoolVar(&skipLoad, "skip-load", false, "Stop after normalization, skip all stores")
	return cmd
}

// stores bundles the persistence layers of the load stages.
type stores struct {
	driver   neo4j.DriverWithContext
	loader   *rdf.Loader
	temporal *temporal.Service
	indexer  *index.Indexer
}

func openStores(secrets config.Secrets, logger *slog.Logger) (*stores, error) {
	driver, err := neo4j.NewDriverWithContext(secrets.Neo4jURI,
		neo4j.BasicAuth(secrets.Neo4jUser, secrets.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{secrets.ElasticsearchAddress()},
		Username:  secrets.ElasticsearchUser,
		Password:  secrets.ElasticsearchPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &stores{
		driver:   driver,
		loader:   rdf.NewLoader(rdf.NewNeo4jExecutor(driver), logger, 0),
		temporal: temporal.NewService(temporal.NewNeo4jStore(driver), logger),
		indexer:  index.NewIndexer(es, logger),
	}, nil
}

func (s *stores) close(ctx context.Context) {
	if s != nil && s.driver != nil {
		_ = s.driver.Close(ctx)
	}
}

func runETL(ctx context.Context, opts *rootOptions, platforms []string, skipLoad bool) error {
	cfg, logger, err := opts.setup()
	if err != nil {
		return err
	}

	secrets, err := config.NewLoader(logger).LoadSecrets(!skipLoad)
	if err != nil {
		return err
	}

	var st *stores
	if !skipLoad {
		st, err = openStores(secrets, logger)
		if err != nil {
			return err
		}
		defer st.close(ctx)

		if err := st.loader.EnsureConstraints(ctx); err != nil {
			return fmt.Errorf("failed to ensure graph constraints: %w", err)
		}
		if cfg.CleanNeo4jDatabase {
			if err := st.loader.Clean(ctx); err != nil {
				return fmt.Errorf("failed to clean triple store: %w", err)
			}
		}
	}

	run, err := pipeline.NewRun(cfg.General.DataRoot)
	if err != nil {
		return err
	}
	logger.Info("Run started", "run", run.ID, "platforms", platforms)

	metrics := pipeline.NewMetrics(prometheus.NewRegistry())

	var firstErr error
	for _, platform := range platforms {
		if err := runPlatform(ctx, cfg, secrets, st, run, metrics, platform, skipLoad, logger); err != nil {
			logger.Error("Platform pipeline failed", "platform", platform, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func runPlatform(
	ctx context.Context,
	cfg *config.Config,
	secrets config.Secrets,
	st *stores,
	run *pipeline.Run,
	metrics *pipeline.Metrics,
	platform string,
	skipLoad bool,
	logger *slog.Logger,
) error {
	popts := []pipeline.Option{pipeline.WithMetrics(metrics)}
	publisher, err := events.NewPublisher(secrets.NATSURL, platform, logger)
	if err != nil {
		logger.Warn("Run events disabled", "error", err)
	} else {
		defer publisher.Close()
		popts = append(popts, pipeline.WithObserver(publisher))
	}

	p := pipeline.New(run, logger, popts...)

	var stages []*pipeline.Stage
	switch platform {
	case "huggingface":
		stages, err = huggingfaceStages(cfg, secrets, run, metrics, logger)
	case "openml":
		stages, err = openmlStages(cfg, run, metrics, logger)
	case "bioimage":
		stages, err = bioimageStages(cfg, run, metrics, logger)
	default:
		return fmt.Errorf("unknown platform %q", platform)
	}
	if err != nil {
		return err
	}

	if !skipLoad {
		stages = append(stages,
			loadStage(st, run, platform, logger),
			temporalStage(st, run, platform, logger),
			indexStage(st, cfg, run, platform, logger),
		)
	}

	for _, s := range stages {
		if err := p.AddStage(s); err != nil {
			return err
		}
	}

	results, err := p.Materialize(ctx)
	reportPath := run.Path("runs", platform, "pipeline_report.json")
	if reportErr := pipeline.WriteJSON(reportPath, results); reportErr != nil {
		logger.Warn("Failed to write pipeline report", "error", reportErr)
	}
	return err
}
