// Package index projects normalized model records into the document
// store: one index per platform, keyword-typed facet fields, text-typed
// name and description.
package index

import (
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultIndexPrefix prefixes per-platform index names.
const DefaultIndexPrefix = "mlentory_models"

// IndexName returns the index name for a platform.
func IndexName(platform string) string {
	return DefaultIndexPrefix + "_" + platform
}

// Mapping is the index definition: single shard and no replicas for the
// single-node deployment, keyword facets, full-text name and
// description.
const Mapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "db_identifier": {"type": "keyword"},
      "identifiers":   {"type": "keyword"},
      "name":          {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description":   {"type": "text"},
      "platform":      {"type": "keyword"},
      "shared_by":     {"type": "keyword"},
      "license":       {"type": "keyword"},
      "ml_tasks":      {"type": "keyword"},
      "keywords":      {"type": "keyword"},
      "datasets":      {"type": "keyword"},
      "languages":     {"type": "keyword"},
      "base_models":   {"type": "keyword"},
      "date_created":  {"type": "date"},
      "date_modified": {"type": "date"}
    }
  }
}`

// ModelDocument is the indexed projection of a normalized model record.
type ModelDocument struct {
	DBIdentifier string   `json:"db_identifier"`
	Identifiers  []string `json:"identifiers,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Platform     string   `json:"platform"`
	SharedBy     string   `json:"shared_by,omitempty"`
	License      string   `json:"license,omitempty"`
	MLTasks      []string `json:"ml_tasks,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Datasets     []string `json:"datasets,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	BaseModels   []string `json:"base_models,omitempty"`
	DateCreated  string   `json:"date_created,omitempty"`
	DateModified string   `json:"date_modified,omitempty"`
}

// BuildDocument projects a record into its index document, rendering
// IRI-valued facet fields as display names via the translation map.
func BuildDocument(r schema.Record, platform string, translation map[string]string) ModelDocument {
	return ModelDocument{
		DBIdentifier: r.MLentoryIRI(),
		Identifiers:  r.Identifiers(),
		Name:         r.String(fair4ml.Name),
		Description:  r.String(fair4ml.Description),
		Platform:     platform,
		SharedBy:     r.String(fair4ml.SharedBy),
		License:      translateOne(r.String(fair4ml.License), translation),
		MLTasks:      translate(r.Strings(fair4ml.MLTask), translation),
		Keywords:     translate(r.Strings(fair4ml.Keywords), translation),
		Datasets:     translate(r.Strings(fair4ml.TrainedOn), translation),
		Languages:    translate(r.Strings(fair4ml.InLanguage), translation),
		BaseModels:   translate(r.Strings(fair4ml.FineTunedFrom), translation),
		DateCreated:  r.String(fair4ml.DateCreated),
		DateModified: r.String(fair4ml.DateModified),
	}
}

func translate(iris []string, translation map[string]string) []string {
	if len(iris) == 0 {
		return nil
	}
	out := make([]string, 0, len(iris))
	for _, iri := range iris {
		out = append(out, translateOne(iri, translation))
	}
	return out
}

// translateOne renders one IRI as its display name, falling back to the
// raw value when the translation map does not know it.
func translateOne(iri string, translation map[string]string) string {
	if iri == "" {
		return ""
	}
	if name, ok := translation[iri]; ok && name != "" {
		return name
	}
	return iri
}
