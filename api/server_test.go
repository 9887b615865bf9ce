package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbmed-semtec/mlentory/explore"
	"github.com/zbmed-semtec/mlentory/index"
	"github.com/zbmed-semtec/mlentory/search"
)

type fakeSearch struct {
	lastReq search.Request
}

func (f *fakeSearch) Search(_ context.Context, req search.Request) (*search.Response, error) {
	f.lastReq = req
	return &search.Response{
		Models:   []index.ModelDocument{{Name: "bert", Platform: "huggingface"}},
		Total:    1,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (f *fakeSearch) GetModel(_ context.Context, id string) (*index.ModelDocument, error) {
	if id == "known" {
		return &index.ModelDocument{Name: "bert"}, nil
	}
	return nil, fmt.Errorf("model %q: %w", id, search.ErrModelNotFound)
}

func (f *fakeSearch) PlatformStats(context.Context) (map[string]int, error) {
	return map[string]int{"huggingface": 3}, nil
}

type fakeExplore struct{}

func (fakeExplore) Explore(_ context.Context, req explore.Request) (*explore.Result, error) {
	if req.Direction == explore.DirectionBoth {
		return nil, fmt.Errorf("direction both: %w", explore.ErrUnsupported)
	}
	if req.EntityID == "missing" {
		return nil, fmt.Errorf("missing: %w", explore.ErrEntityNotFound)
	}
	return &explore.Result{Nodes: []explore.Node{{ID: req.EntityID}}}, nil
}

func testServer(t *testing.T) (*Server, *fakeSearch) {
	t.Helper()
	searcher := &fakeSearch{}
	return NewServer(searcher, fakeExplore{}, prometheus.NewRegistry(), nil), searcher
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSearchEndpointParsesParams(t *testing.T) {
	s, searcher := testServer(t)

	rec := get(t, s, "/models?q=bert&page=2&page_size=5&facets=tasks,license&filter.platform=huggingface")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "bert", searcher.lastReq.Query)
	assert.Equal(t, 2, searcher.lastReq.Page)
	assert.Equal(t, 5, searcher.lastReq.PageSize)
	assert.Equal(t, []string{"tasks", "license"}, searcher.lastReq.Facets)
	assert.Equal(t, []string{"huggingface"}, searcher.lastReq.Filters["platform"])

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestSearchEndpointRejectsBadPage(t *testing.T) {
	s, _ := testServer(t)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/models?page=zero").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/models?page_size=-1").Code)
}

func TestGetModelEndpoint(t *testing.T) {
	s, _ := testServer(t)
	assert.Equal(t, http.StatusOK, get(t, s, "/models/known").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/models/unknown").Code)
}

func TestGraphEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := get(t, s, "/graph/abc")
	require.Equal(t, http.StatusOK, rec.Code)
	var result explore.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Nodes, 1)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/graph/abc?direction=both").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/graph/missing").Code)
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	s, _ := testServer(t)

	rec := get(t, s, "/stats/platform")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats["huggingface"])

	assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/metrics").Code)
}

func TestHealthEndpointReportsStoreStatus(t *testing.T) {
	s, _ := testServer(t)
	s.AddHealthCheck("neo4j", func(context.Context) error { return nil })
	s.AddHealthCheck("elasticsearch", func(context.Context) error {
		return fmt.Errorf("connection refused")
	})

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status["status"])
	assert.Equal(t, "ok", status["neo4j"])
	assert.Equal(t, "connection refused", status["elasticsearch"])
}

func TestHealthEndpointAllStoresHealthy(t *testing.T) {
	s, _ := testServer(t)
	s.AddHealthCheck("neo4j", func(context.Context) error { return nil })

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "ok", status["neo4j"])
}
