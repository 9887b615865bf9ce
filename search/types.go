// Package search compiles faceted model queries into document-store
// requests and serves them.
package search

import "github.com/zbmed-semtec/mlentory/index"

// Pagination bounds.
const (
	MinPageSize = 1
	MaxPageSize = 1000
)

// DefaultFacetSize is the number of values returned per facet when the
// request does not say otherwise.
const DefaultFacetSize = 10

// FacetFields maps public facet names to their index fields.
var FacetFields = map[string]string{
	"platform":  "platform",
	"shared_by": "shared_by",
	"license":   "license",
	"tasks":     "ml_tasks",
	"keywords":  "keywords",
	"datasets":  "datasets",
	"languages": "languages",
}

// DateFacets lists facets compiled as inclusive range filters instead
// of term filters.
var DateFacets = map[string]string{
	"created_after":   "date_created",
	"created_before":  "date_created",
	"modified_after":  "date_modified",
	"modified_before": "date_modified",
}

// Request is one faceted search.
type Request struct {
	Query       string              `json:"query"`
	Filters     map[string][]string `json:"filters,omitempty"`
	Facets      []string            `json:"facets,omitempty"`
	FacetSize   int                 `json:"facet_size,omitempty"`
	FacetSearch map[string]string   `json:"facet_search,omitempty"`
	Page        int                 `json:"page,omitempty"`
	PageSize    int                 `json:"page_size,omitempty"`
}

// FacetValue is one facet bucket.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Response is one search result page.
type Response struct {
	Models   []index.ModelDocument   `json:"models"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	HasNext  bool                    `json:"has_next"`
	HasPrev  bool                    `json:"has_prev"`
	Facets   map[string][]FacetValue `json:"facets,omitempty"`
}

// FacetPageRequest pages through a high-cardinality facet with a
// composite aggregation cursor.
type FacetPageRequest struct {
	Facet string `json:"facet"`
	Size  int    `json:"size,omitempty"`
	After string `json:"after,omitempty"`
}

// FacetPage is one cursor page of facet values.
type FacetPage struct {
	Values []FacetValue `json:"values"`
	After  string       `json:"after,omitempty"`
}
