package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeStore(t *testing.T, response string, captured *string) *Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			*captured = string(body)
		}
		fmt.Fprint(w, response)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewService(client, nil)
}

const searchResponse = `{
  "hits": {
    "total": {"value": 42},
    "hits": [
      {"_source": {"db_identifier": "https://w3id.org/mlentory/mlentory_graph/mlmodel/abc", "name": "bert", "platform": "huggingface"}}
    ]
  },
  "aggregations": {
    "tasks": {"buckets": [{"key": "Text Generation", "doc_count": 7}]}
  }
}`

func TestSearchMapsHitsAndFacets(t *testing.T) {
	var captured string
	svc := fakeStore(t, searchResponse, &captured)

	resp, err := svc.Search(context.Background(), Request{
		Query: "bert", Facets: []string{"tasks"}, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 42, resp.Total)
	require.Len(t, resp.Models, 1)
	assert.Equal(t, "bert", resp.Models[0].Name)
	assert.True(t, resp.HasPrev)
	assert.True(t, resp.HasNext)
	require.Contains(t, resp.Facets, "tasks")
	assert.Equal(t, FacetValue{Value: "Text Generation", Count: 7}, resp.Facets["tasks"][0])

	assert.Contains(t, captured, `"minimum_should_match":1`)
}

func TestGetModelNotFound(t *testing.T) {
	svc := fakeStore(t, `{"hits":{"total":{"value":0},"hits":[]}}`, nil)
	_, err := svc.GetModel(context.Background(), "missing")
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestFacetValuesCursor(t *testing.T) {
	response := `{
	  "hits": {"total": {"value": 0}, "hits": []},
	  "aggregations": {
	    "keywords": {
	      "buckets": [{"key": {"keywords": "nlp"}, "doc_count": 12}],
	      "after_key": {"keywords": "nlp"}
	    }
	  }
	}`
	svc := fakeStore(t, response, nil)

	page, err := svc.FacetValues(context.Background(), FacetPageRequest{Facet: "keywords", Size: 1})
	require.NoError(t, err)
	require.Len(t, page.Values, 1)
	assert.Equal(t, FacetValue{Value: "nlp", Count: 12}, page.Values[0])
	assert.Equal(t, "nlp", page.After)
}

func TestPlatformStats(t *testing.T) {
	response := `{
	  "hits": {"total": {"value": 0}, "hits": []},
	  "aggregations": {
	    "platform": {"buckets": [
	      {"key": "huggingface", "doc_count": 90},
	      {"key": "openml", "doc_count": 10}
	    ]}
	  }
	}`
	svc := fakeStore(t, response, nil)

	stats, err := svc.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"huggingface": 90, "openml": 10}, stats)
}
