package assistant

import (
	"fmt"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// stopWords are generic query words that never carry search signal.
var stopWords = map[string]bool{
	"model": true, "models": true,
	"task": true, "tasks": true,
	"example": true, "examples": true,
	"dataset": true, "datasets": true,
	"show": true, "find": true, "list": true, "give": true,
	"please": true, "want": true, "need": true,
}

// FacetCatalog maps facet names to their known values, lowercased, for
// lifting query tokens into filters.
type FacetCatalog map[string]map[string]string

// NewFacetCatalog builds a catalog from facet → display values.
func NewFacetCatalog(values map[string][]string) FacetCatalog {
	catalog := FacetCatalog{}
	for facet, list := range values {
		entries := make(map[string]string, len(list))
		for _, v := range list {
			entries[strings.ToLower(v)] = v
		}
		catalog[facet] = entries
	}
	return catalog
}

// Refined is the result of query refinement.
type Refined struct {
	Query   string              `json:"query"`
	Filters map[string][]string `json:"filters"`
}

// Refiner rewrites free-text assistant queries: part-of-speech tagging
// keeps content words, the stop-list drops generic ones, and tokens
// matching a known facet value move out of the text query into filters.
type Refiner struct {
	catalog FacetCatalog
}

// NewRefiner creates a query refiner. catalog may be nil.
func NewRefiner(catalog FacetCatalog) *Refiner {
	return &Refiner{catalog: catalog}
}

// Refine rewrites one query.
func (r *Refiner) Refine(query string) (*Refined, error) {
	doc, err := prose.NewDocument(query)
	if err != nil {
		return nil, fmt.Errorf("failed to tag query: %w", err)
	}

	var kept []string
	for _, tok := range doc.Tokens() {
		if !contentTag(tok.Tag) {
			continue
		}
		word := strings.ToLower(tok.Text)
		if stopWords[word] {
			continue
		}
		kept = append(kept, word)
	}

	filters := map[string][]string{}
	var free []string
	i := 0
	for i < len(kept) {
		// prefer two-token facet values ("text generation") over single
		// tokens
		if i+1 < len(kept) {
			if facet, value, ok := r.lookup(kept[i] + " " + kept[i+1]); ok {
				filters[facet] = append(filters[facet], value)
				i += 2
				continue
			}
		}
		if facet, value, ok := r.lookup(kept[i]); ok {
			filters[facet] = append(filters[facet], value)
			i++
			continue
		}
		free = append(free, kept[i])
		i++
	}

	return &Refined{Query: strings.Join(free, " "), Filters: filters}, nil
}

func (r *Refiner) lookup(token string) (facet, value string, ok bool) {
	for facet, values := range r.catalog {
		if display, ok := values[token]; ok {
			return facet, display, true
		}
	}
	return "", "", false
}

// contentTag reports whether a Penn Treebank tag marks a noun, proper
// noun or adjective.
func contentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ")
}
