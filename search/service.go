package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/zbmed-semtec/mlentory/index"
)

// ErrModelNotFound marks a model id the document store does not hold.
var ErrModelNotFound = errors.New("model not found")

// AllIndices matches every per-platform model index.
const AllIndices = index.DefaultIndexPrefix + "_*"

// Service serves faceted model search against the document store.
type Service struct {
	es     *elasticsearch.Client
	logger *slog.Logger
}

// NewService creates the search service.
func NewService(es *elasticsearch.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{es: es, logger: logger}
}

type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source index.ModelDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type termsAgg struct {
	Buckets []struct {
		Key      any `json:"key"`
		DocCount int `json:"doc_count"`
	} `json:"buckets"`
	AfterKey map[string]any `json:"after_key"`
}

// Search runs one faceted query and maps the hits and aggregations back
// to the public response shape.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	page, size := ClampPage(req.Page, req.PageSize)

	parsed, err := s.query(ctx, Compile(req))
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Models:   make([]index.ModelDocument, 0, len(parsed.Hits.Hits)),
		Total:    parsed.Hits.Total.Value,
		Page:     page,
		PageSize: size,
		HasPrev:  page > 1,
		HasNext:  page*size < parsed.Hits.Total.Value,
	}
	for _, hit := range parsed.Hits.Hits {
		resp.Models = append(resp.Models, hit.Source)
	}

	if len(parsed.Aggregations) > 0 {
		resp.Facets = map[string][]FacetValue{}
		for facet, raw := range parsed.Aggregations {
			var agg termsAgg
			if err := json.Unmarshal(raw, &agg); err != nil {
				continue
			}
			values := make([]FacetValue, 0, len(agg.Buckets))
			for _, bucket := range agg.Buckets {
				values = append(values, FacetValue{Value: fmt.Sprint(bucket.Key), Count: bucket.DocCount})
			}
			resp.Facets[facet] = values
		}
	}
	return resp, nil
}

// FacetValues pages through one facet's values with a composite
// aggregation cursor.
func (s *Service) FacetValues(ctx context.Context, req FacetPageRequest) (*FacetPage, error) {
	body, ok := CompileFacetPage(req)
	if !ok {
		return nil, fmt.Errorf("unknown facet %q", req.Facet)
	}

	parsed, err := s.query(ctx, body)
	if err != nil {
		return nil, err
	}

	page := &FacetPage{}
	raw, ok := parsed.Aggregations[req.Facet]
	if !ok {
		return page, nil
	}
	var agg struct {
		Buckets []struct {
			Key      map[string]any `json:"key"`
			DocCount int            `json:"doc_count"`
		} `json:"buckets"`
		AfterKey map[string]any `json:"after_key"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode facet page: %w", err)
	}
	for _, bucket := range agg.Buckets {
		page.Values = append(page.Values, FacetValue{
			Value: fmt.Sprint(bucket.Key[req.Facet]), Count: bucket.DocCount,
		})
	}
	if after, ok := agg.AfterKey[req.Facet]; ok {
		page.After = fmt.Sprint(after)
	}
	return page, nil
}

// GetModel fetches one model document by its MLentory short id.
func (s *Service) GetModel(ctx context.Context, id string) (*index.ModelDocument, error) {
	body := map[string]any{
		"query": map[string]any{"ids": map[string]any{"values": []string{id}}},
		"size":  1,
	}
	parsed, err := s.query(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, fmt.Errorf("model %q: %w", id, ErrModelNotFound)
	}
	return &parsed.Hits.Hits[0].Source, nil
}

// PlatformStats counts indexed models per platform.
func (s *Service) PlatformStats(ctx context.Context) (map[string]int, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"platform": map[string]any{
				"terms": map[string]any{"field": "platform", "size": 50},
			},
		},
	}
	parsed, err := s.query(ctx, body)
	if err != nil {
		return nil, err
	}

	stats := map[string]int{}
	if raw, ok := parsed.Aggregations["platform"]; ok {
		var agg termsAgg
		if err := json.Unmarshal(raw, &agg); err != nil {
			return nil, fmt.Errorf("failed to decode platform stats: %w", err)
		}
		for _, bucket := range agg.Buckets {
			stats[fmt.Sprint(bucket.Key)] = bucket.DocCount
		}
	}
	return stats, nil
}

func (s *Service) query(ctx context.Context, body map[string]any) (*esResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(AllIndices),
		s.es.Search.WithBody(bytes.NewReader(encoded)),
		s.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search returned %s", res.Status())
	}

	var parsed esResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &parsed, nil
}
