package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultWikipediaBaseURL is the public English Wikipedia host.
const DefaultWikipediaBaseURL = "https://en.wikipedia.org"

// summaryLimit bounds keyword definitions pulled from page summaries.
const summaryLimit = 500

// KeywordClient resolves keyword terms in two tiers: the curated
// catalog first, then a Wikipedia page lookup. Terms found in neither
// become not_found stubs, never dropped.
type KeywordClient struct {
	catalog  *Catalog
	http     *HTTPClient
	cache    *Cache
	baseURL  string
	platform string
	logger   *slog.Logger
}

// NewKeywordClient creates a keyword client. catalog and cache may be
// nil; baseURL falls back to English Wikipedia.
func NewKeywordClient(catalog *Catalog, cache *Cache, baseURL, platform string, logger *slog.Logger) *KeywordClient {
	if baseURL == "" {
		baseURL = DefaultWikipediaBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordClient{
		catalog:  catalog,
		http:     NewHTTPClient("wikipedia", logger),
		cache:    cache,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		platform: platform,
		logger:   logger,
	}
}

// FetchKeywords resolves each term to a keyword record with bounded
// parallelism.
func (k *KeywordClient) FetchKeywords(ctx context.Context, terms []string, threads int) ([]schema.Record, error) {
	return fetchAll(ctx, terms, threads, k.fetchOne, func(term string, err error) schema.Record {
		k.logger.Debug("stubbing keyword", "term", term, "error", err)
		r := schema.Stub(fair4ml.KindKeyword, k.platform, term, err)
		r.SetMetadata(fair4ml.Name, schema.FieldMetadata{
			Method: schema.MethodNotFound, Notes: "not_found", Error: err.Error(),
		})
		return r
	})
}

func (k *KeywordClient) fetchOne(ctx context.Context, term string) (schema.Record, error) {
	if entry, ok := k.catalog.lookupSafe(term); ok {
		r := schema.New(fair4ml.KindKeyword, k.platform, term)
		r.Set(fair4ml.Name, entry.Term, schema.Meta(schema.MethodCurated, 1.0, "keyword"))
		r.Set(fair4ml.Description, entry.Definition, schema.Meta(schema.MethodCurated, 1.0, "definition"))
		return r, nil
	}

	summary, pageURL, err := k.lookupPage(ctx, term)
	if err != nil {
		return nil, err
	}

	r := schema.New(fair4ml.KindKeyword, k.platform, term)
	r.Set(fair4ml.Name, term, schema.Meta(schema.MethodAPI, 0.7, "search"))
	r.Set(fair4ml.Description, summary, schema.Meta(schema.MethodAPI, 0.7, "summary"))
	r.Set(fair4ml.URL, pageURL, schema.Meta(schema.MethodAPI, 0.7, "content_urls"))
	return r, nil
}

type wikiSearchResponse struct {
	Pages []struct {
		Key string `json:"key"`
	} `json:"pages"`
}

type wikiSummaryResponse struct {
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// lookupPage searches for the term contextualized to machine learning
// and returns the matched page's summary and URL.
func (k *KeywordClient) lookupPage(ctx context.Context, term string) (summary, pageURL string, err error) {
	if cached, ok := k.cache.Get(ctx, "keyword:"+term); ok {
		var hit [2]string
		if json.Unmarshal([]byte(cached), &hit) == nil {
			return hit[0], hit[1], nil
		}
	}

	query := url.QueryEscape(term + " machine learning")
	var search wikiSearchResponse
	if err := k.http.GetJSON(ctx, k.baseURL+"/w/rest.php/v1/search/page?limit=1&q="+query, nil, &search); err != nil {
		return "", "", err
	}
	if len(search.Pages) == 0 {
		return "", "", fmt.Errorf("keyword %q: %w", term, ErrNotFound)
	}

	var page wikiSummaryResponse
	key := url.PathEscape(search.Pages[0].Key)
	if err := k.http.GetJSON(ctx, k.baseURL+"/api/rest_v1/page/summary/"+key, nil, &page); err != nil {
		return "", "", err
	}

	summary = page.Extract
	if len(summary) > summaryLimit {
		end := summaryLimit
		for end > 0 && !utf8.RuneStart(summary[end]) {
			end--
		}
		summary = summary[:end]
	}
	pageURL = page.ContentURLs.Desktop.Page

	if encoded, err := json.Marshal([2]string{summary, pageURL}); err == nil {
		k.cache.Set(ctx, "keyword:"+term, string(encoded))
	}
	return summary, pageURL, nil
}

// lookupSafe tolerates a nil catalog.
func (c *Catalog) lookupSafe(term string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	return c.Lookup(term)
}
