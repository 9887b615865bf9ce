package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Field weights of the cross-field match strategy.
var crossFields = []string{
	"name^2", "keywords^5", "description^2.5", "ml_tasks^1", "shared_by^1",
}

// bestFields carries the same weights scaled by 0.8.
var bestFields = []string{
	"name^1.6", "keywords^4", "description^2", "ml_tasks^0.8", "shared_by^0.8",
}

// Tokenize splits a query on whitespace, '-', '_' and '.', lowercased.
func Tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
}

// Bigrams returns the consecutive token pairs of a token list.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// ClampPage normalizes 1-based pagination: page floors at 1, size is
// clamped to [MinPageSize, MaxPageSize].
func ClampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < MinPageSize {
		size = MinPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Compile translates a search request into the store query body.
func Compile(req Request) map[string]any {
	page, size := ClampPage(req.Page, req.PageSize)

	body := map[string]any{
		"query": map[string]any{"bool": compileBool(req)},
		"from":  (page - 1) * size,
		"size":  size,
	}
	if aggs := compileAggs(req); len(aggs) > 0 {
		body["aggs"] = aggs
	}
	return body
}

func compileBool(req Request) map[string]any {
	clause := map[string]any{}

	if should := compileText(req.Query); len(should) > 0 {
		clause["should"] = should
		clause["minimum_should_match"] = 1
	} else {
		clause["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}

	if filter := compileFilters(req.Filters); len(filter) > 0 {
		clause["filter"] = filter
	}
	return clause
}

// compileText builds the high-recall should clauses: the full phrase,
// every token, and every consecutive bigram, each matched cross-field
// and best-field; tokens of two or more characters also match keyword
// and task wildcards.
func compileText(query string) []any {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	tokens := Tokenize(query)
	var should []any

	should = append(should, map[string]any{
		"multi_match": map[string]any{
			"query": query, "type": "phrase", "fields": crossFields,
		},
	})

	terms := append(append([]string{}, tokens...), Bigrams(tokens)...)
	for _, term := range terms {
		should = append(should,
			map[string]any{"multi_match": map[string]any{
				"query": term, "type": "cross_fields", "fields": crossFields,
			}},
			map[string]any{"multi_match": map[string]any{
				"query": term, "type": "best_fields", "fields": bestFields,
			}},
		)
		if len(term) >= 2 && !strings.Contains(term, " ") {
			for _, field := range []string{"keywords", "ml_tasks"} {
				should = append(should, map[string]any{
					"wildcard": map[string]any{
						field: map[string]any{
							"value":            "*" + term + "*",
							"case_insensitive": true,
						},
					},
				})
			}
		}
	}
	return should
}

func compileFilters(filters map[string][]string) []any {
	var out []any
	for _, facet := range sortedKeys(filters) {
		values := filters[facet]
		if len(values) == 0 {
			continue
		}
		if field, ok := DateFacets[facet]; ok {
			bound := "gte"
			if strings.HasSuffix(facet, "_before") {
				bound = "lte"
			}
			out = append(out, map[string]any{
				"range": map[string]any{field: map[string]any{bound: values[0]}},
			})
			continue
		}
		field, ok := FacetFields[facet]
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"terms": map[string]any{field: values},
		})
	}
	return out
}

func compileAggs(req Request) map[string]any {
	size := req.FacetSize
	if size < 1 {
		size = DefaultFacetSize
	}

	aggs := map[string]any{}
	for _, facet := range req.Facets {
		field, ok := FacetFields[facet]
		if !ok {
			continue
		}
		terms := map[string]any{
			"field": field,
			"size":  size,
			"order": map[string]any{"_count": "desc"},
		}
		if substring := req.FacetSearch[facet]; substring != "" {
			terms["include"] = ".*" + caseInsensitivePattern(substring) + ".*"
		}
		aggs[facet] = map[string]any{"terms": terms}
	}
	return aggs
}

// CompileFacetPage builds a composite aggregation for cursor-paginated
// facet values.
func CompileFacetPage(req FacetPageRequest) (map[string]any, bool) {
	field, ok := FacetFields[req.Facet]
	if !ok {
		return nil, false
	}
	size := req.Size
	if size < 1 {
		size = DefaultFacetSize
	}

	composite := map[string]any{
		"size": size,
		"sources": []any{
			map[string]any{req.Facet: map[string]any{"terms": map[string]any{"field": field}}},
		},
	}
	if req.After != "" {
		composite["after"] = map[string]any{req.Facet: req.After}
	}
	return map[string]any{
		"size": 0,
		"aggs": map[string]any{req.Facet: map[string]any{"composite": composite}},
	}, true
}

// caseInsensitivePattern renders a facet search substring as a
// regex matching it case-insensitively, with regex metacharacters
// escaped.
func caseInsensitivePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if lower != upper {
			b.WriteString("[")
			b.WriteRune(lower)
			b.WriteRune(upper)
			b.WriteString("]")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
