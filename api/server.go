package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zbmed-semtec/mlentory/explore"
	"github.com/zbmed-semtec/mlentory/index"
	"github.com/zbmed-semtec/mlentory/search"
)

// SearchService is the search surface the API serves.
type SearchService interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	GetModel(ctx context.Context, id string) (*index.ModelDocument, error)
	PlatformStats(ctx context.Context) (map[string]int, error)
}

// ExploreService is the graph surface the API serves.
type ExploreService interface {
	Explore(ctx context.Context, req explore.Request) (*explore.Result, error)
}

// HealthCheck pings one backing store.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP API server.
type Server struct {
	search  SearchService
	explore ExploreService
	checks  map[string]HealthCheck
	logger  *slog.Logger
	router  chi.Router
}

// NewServer wires the API routes. registry may be nil to disable
// metrics.
func NewServer(searchSvc SearchService, exploreSvc ExploreService, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		search:  searchSvc,
		explore: exploreSvc,
		checks:  map[string]HealthCheck{},
		logger:  logger,
	}

	var metrics *Metrics
	if registry != nil {
		metrics = NewMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(Instrument(metrics, logger))

	r.Get("/models", s.handleSearchModels)
	r.Get("/models/{id}", s.handleGetModel)
	r.Get("/graph/{id}", s.handleGraph)
	r.Get("/stats/platform", s.handlePlatformStats)
	r.Get("/health", s.handleHealth)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s
}

// AddHealthCheck registers a named store ping reported by GET /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
