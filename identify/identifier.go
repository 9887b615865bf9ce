// Package identify extracts entity references of every supported kind
// from raw model records: dataset ids, article ids, base models,
// keywords, licenses, languages and tasks. References feed the
// enrichment clients and the linkage step.
package identify

import (
	"sort"
	"strings"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// Tag prefixes reserved for typed references. Tags with these prefixes
// never become keywords.
const (
	PrefixDataset   = "dataset:"
	PrefixArxiv     = "arxiv:"
	PrefixBaseModel = "base_model:"
	PrefixLicense   = "license:"
)

var reservedPrefixes = []string{
	PrefixDataset, PrefixArxiv, PrefixBaseModel, PrefixLicense,
	"doi:", "region:",
}

// Identifier finds the references of one entity kind across raw
// records.
type Identifier interface {
	// Kind is the entity kind this identifier produces references for.
	Kind() fair4ml.EntityKind
	// Identify aggregates the references of all records into one
	// deduplicated, sorted set.
	Identify(models []huggingface.RawModel) []string
	// IdentifyPerRecord returns the references of each record keyed by
	// model id. Records without references map to an empty list.
	IdentifyPerRecord(models []huggingface.RawModel) map[string][]string
}

// extractFunc pulls the raw references of one kind out of one record.
type extractFunc func(huggingface.RawModel) []string

// kindIdentifier is the shared identifier shape: one extraction
// function applied per record, aggregation on top.
type kindIdentifier struct {
	kind    fair4ml.EntityKind
	extract extractFunc
}

func (k kindIdentifier) Kind() fair4ml.EntityKind { return k.kind }

func (k kindIdentifier) IdentifyPerRecord(models []huggingface.RawModel) map[string][]string {
	out := make(map[string][]string, len(models))
	for _, m := range models {
		refs := uniqueSorted(k.extract(m))
		if refs == nil {
			refs = []string{}
		}
		out[m.ID] = refs
	}
	return out
}

func (k kindIdentifier) Identify(models []huggingface.RawModel) []string {
	var all []string
	for _, m := range models {
		all = append(all, k.extract(m)...)
	}
	return uniqueSorted(all)
}

// All returns the full identifier set. taskCatalog maps task aliases to
// canonical task names; nil disables catalog normalization.
func All(taskCatalog map[string]string) []Identifier {
	return []Identifier{
		NewDatasetIdentifier(),
		NewArticleIdentifier(),
		NewBaseModelIdentifier(),
		NewKeywordIdentifier(),
		NewLicenseIdentifier(),
		NewLanguageIdentifier(),
		NewTaskIdentifier(taskCatalog),
	}
}

// tagValues returns the values of tags carrying the given prefix.
func tagValues(tags []string, prefix string) []string {
	var out []string
	for _, tag := range tags {
		if rest, ok := strings.CutPrefix(tag, prefix); ok && rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

func hasReservedPrefix(tag string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
