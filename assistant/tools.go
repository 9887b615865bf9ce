package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/zbmed-semtec/mlentory/explore"
	"github.com/zbmed-semtec/mlentory/index"
	"github.com/zbmed-semtec/mlentory/search"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// Searcher is the search surface the tools consume.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	GetModel(ctx context.Context, id string) (*index.ModelDocument, error)
}

// Explorer is the graph surface the tools consume.
type Explorer interface {
	Explore(ctx context.Context, req explore.Request) (*explore.Result, error)
}

// Tool is one callable tool: a name, a short description for the
// protocol listing, and a JSON-in/JSON-out handler.
type Tool struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, params json.RawMessage) (any, error)
}

// Adapter exposes the MLentory services as assistant tools.
type Adapter struct {
	search  Searcher
	explore Explorer
	refiner *Refiner
	logger  *slog.Logger
}

// NewAdapter creates the tool adapter.
func NewAdapter(searcher Searcher, explorer Explorer, refiner *Refiner, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{search: searcher, explore: explorer, refiner: refiner, logger: logger}
}

// Tools lists the four tools of the adapter.
func (a *Adapter) Tools() []Tool {
	return []Tool{
		{
			Name:        "search_models",
			Description: "Faceted full-text search over indexed ML models.",
			Handler:     a.searchModels,
		},
		{
			Name:        "get_model_detail",
			Description: "Fetch one model by id, optionally with its related entities.",
			Handler:     a.getModelDetail,
		},
		{
			Name:        "get_related_models_by_entity",
			Description: "List models connected to a named entity (task, dataset, license, keyword or language).",
			Handler:     a.relatedModels,
		},
		{
			Name:        "refine_query",
			Description: "Rewrite a free-text query into search terms plus facet filters.",
			Handler:     a.refineQuery,
		},
	}
}

type searchModelsParams struct {
	Query    string              `json:"query"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Filters  map[string][]string `json:"filters,omitempty"`
}

type searchModelsResult struct {
	Models   []index.ModelDocument          `json:"models"`
	Total    int                            `json:"total"`
	Page     int                            `json:"page"`
	PageSize int                            `json:"page_size"`
	HasNext  bool                           `json:"has_next"`
	HasPrev  bool                           `json:"has_prev"`
	Facets   map[string][]search.FacetValue `json:"facets,omitempty"`
	Filters  map[string][]string            `json:"filters,omitempty"`
}

func (a *Adapter) searchModels(ctx context.Context, params json.RawMessage) (any, error) {
	var p searchModelsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid search_models params: %w", err)
	}

	resp, err := a.search.Search(ctx, search.Request{
		Query:    p.Query,
		Filters:  p.Filters,
		Facets:   []string{"tasks", "keywords", "license", "platform"},
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		return nil, err
	}

	for i := range resp.Models {
		resp.Models[i].Description = CleanMarkdown(resp.Models[i].Description)
	}
	return searchModelsResult{
		Models:   resp.Models,
		Total:    resp.Total,
		Page:     resp.Page,
		PageSize: resp.PageSize,
		HasNext:  resp.HasNext,
		HasPrev:  resp.HasPrev,
		Facets:   resp.Facets,
		Filters:  p.Filters,
	}, nil
}

type modelDetailParams struct {
	ModelID           string `json:"model_id"`
	ResolveProperties bool   `json:"resolve_properties,omitempty"`
}

type modelDetailResult struct {
	Model   index.ModelDocument `json:"model"`
	Related *explore.Result     `json:"related,omitempty"`
}

func (a *Adapter) getModelDetail(ctx context.Context, params json.RawMessage) (any, error) {
	var p modelDetailParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid get_model_detail params: %w", err)
	}

	doc, err := a.search.GetModel(ctx, fair4ml.ShortID(p.ModelID))
	if err != nil {
		return nil, err
	}
	doc.Description = CleanMarkdown(doc.Description)

	result := modelDetailResult{Model: *doc}
	if p.ResolveProperties {
		related, err := a.explore.Explore(ctx, explore.Request{EntityID: doc.DBIdentifier})
		if err != nil {
			a.logger.Warn("related-entity hydration failed", "model", p.ModelID, "error", err)
		} else {
			result.Related = related
		}
	}
	return result, nil
}

type relatedModelsParams struct {
	EntityName string `json:"entity_name"`
}

type relatedModelsResult struct {
	Entity string                `json:"entity"`
	Facet  string                `json:"facet,omitempty"`
	Models []index.ModelDocument `json:"models"`
}

// relatedFacets are probed in order when resolving an entity name.
var relatedFacets = []string{"tasks", "datasets", "keywords", "license", "languages"}

func (a *Adapter) relatedModels(ctx context.Context, params json.RawMessage) (any, error) {
	var p relatedModelsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid get_related_models_by_entity params: %w", err)
	}
	if p.EntityName == "" {
		return nil, fmt.Errorf("entity_name is required")
	}

	for _, facet := range relatedFacets {
		resp, err := a.search.Search(ctx, search.Request{
			Filters:  map[string][]string{facet: {p.EntityName}},
			Page:     1,
			PageSize: 25,
		})
		if err != nil {
			return nil, err
		}
		if resp.Total == 0 {
			continue
		}
		for i := range resp.Models {
			resp.Models[i].Description = CleanMarkdown(resp.Models[i].Description)
		}
		return relatedModelsResult{Entity: p.EntityName, Facet: facet, Models: resp.Models}, nil
	}
	return relatedModelsResult{Entity: p.EntityName, Models: []index.ModelDocument{}}, nil
}

type refineQueryParams struct {
	Query string `json:"query"`
}

func (a *Adapter) refineQuery(_ context.Context, params json.RawMessage) (any, error) {
	var p refineQueryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid refine_query params: %w", err)
	}
	return a.refiner.Refine(p.Query)
}
