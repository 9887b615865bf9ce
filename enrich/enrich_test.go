package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

func TestHTTPClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewHTTPClient("test", nil)
	var out map[string]bool
	require.NoError(t, c.GetJSON(context.Background(), server.URL, nil, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewHTTPClient("test", nil)
	_, err := c.Get(context.Background(), server.URL, nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAllStubsWithoutDropping(t *testing.T) {
	ids := []string{"a", "b", "a", "c"}
	records, err := fetchAll(context.Background(), ids, 4,
		func(_ context.Context, id string) (schema.Record, error) {
			if id == "b" {
				return nil, errors.New("boom")
			}
			r := schema.New(fair4ml.KindKeyword, "huggingface", id)
			r.Set(fair4ml.Name, id, schema.Meta(schema.MethodAPI, 1.0, "name"))
			return r, nil
		},
		func(id string, err error) schema.Record {
			return schema.Stub(fair4ml.KindKeyword, "huggingface", id, err)
		})
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].String(fair4ml.Name))
	assert.False(t, records[1].Enriched())
	assert.Equal(t, 1, CountStubs(records))
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.csv")
	content := "keyword,definition,aliases\n" +
		"transformers,A library of pretrained models.,transformer;hf-transformers\n" +
		"fill-mask,Masked token prediction.,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogLookupByTermAndAlias(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t), nil)
	require.NoError(t, err)

	entry, ok := catalog.Lookup("Transformers")
	require.True(t, ok)
	assert.Equal(t, "A library of pretrained models.", entry.Definition)

	entry, ok = catalog.Lookup("hf-transformers")
	require.True(t, ok)
	assert.Equal(t, "transformers", entry.Term)

	_, ok = catalog.Lookup("unknown")
	assert.False(t, ok)
}

func TestLoadTaskCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hf_tasks.csv")
	content := "alias,canonical\nfill-mask,Masked Language Modeling\nFILL-MASK,Masked Language Modeling\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	catalog, err := LoadTaskCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "Masked Language Modeling", catalog["fill-mask"])
}

func TestKeywordClientPrefersCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t), nil)
	require.NoError(t, err)

	// No server: a catalog hit must not touch the network.
	k := NewKeywordClient(catalog, nil, "http://127.0.0.1:1", "huggingface", nil)
	records, err := k.FetchKeywords(context.Background(), []string{"transformers"}, 2)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "transformers", records[0].String(fair4ml.Name))
	assert.Equal(t, "A library of pretrained models.", records[0].String(fair4ml.Description))
	meta := records[0].Metadata()[fair4ml.Name]
	assert.Equal(t, schema.MethodCurated, meta.Method)
}

func TestKeywordClientFallsBackToWikipedia(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/rest.php/v1/search/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pages":[{"key":"Attention_(machine_learning)"}]}`)
	})
	mux.HandleFunc("/api/rest_v1/page/summary/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"extract":"Attention is a mechanism.","content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/Attention_(machine_learning)"}}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	k := NewKeywordClient(nil, nil, server.URL, "huggingface", nil)
	records, err := k.FetchKeywords(context.Background(), []string{"attention"}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.True(t, records[0].Enriched())
	assert.Equal(t, "Attention is a mechanism.", records[0].String(fair4ml.Description))
	assert.Contains(t, records[0].String(fair4ml.URL), "wiki/Attention")
}

func TestKeywordClientTruncatesSummaryOnRuneBoundary(t *testing.T) {
	// One leading ASCII byte shifts every two-byte rune off the even
	// offsets, so the 500-byte cut lands inside a rune.
	extract := "a" + strings.Repeat("ä", 300)

	mux := http.NewServeMux()
	mux.HandleFunc("/w/rest.php/v1/search/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pages":[{"key":"Long_article"}]}`)
	})
	mux.HandleFunc("/api/rest_v1/page/summary/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"extract": extract})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	k := NewKeywordClient(nil, nil, server.URL, "huggingface", nil)
	records, err := k.FetchKeywords(context.Background(), []string{"long"}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	description := records[0].String(fair4ml.Description)
	assert.LessOrEqual(t, len(description), summaryLimit)
	assert.True(t, utf8.ValidString(description))
	assert.Equal(t, 499, len(description))
}

func TestKeywordClientStubsUnknownTerms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pages":[]}`)
	}))
	defer server.Close()

	k := NewKeywordClient(nil, nil, server.URL, "huggingface", nil)
	records, err := k.FetchKeywords(context.Background(), []string{"xyzzy"}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.False(t, records[0].Enriched())
	meta := records[0].Metadata()[fair4ml.Name]
	assert.Equal(t, schema.MethodNotFound, meta.Method)
	assert.Equal(t, "not_found", meta.Notes)
}

const atomSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep
  Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <published>2018-10-11T00:00:00Z</published>
    <author><name>Jacob Devlin</name></author>
    <author><name>Ming-Wei Chang</name></author>
  </entry>
</feed>`

func TestArxivClientNormalizesAndStubs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomSample)
	}))
	defer server.Close()

	a := NewArxivClient(server.URL, "huggingface", nil)
	records, err := a.FetchArticles(context.Background(), []string{"1810.04805v2", "1810.04805", "9999.00001"})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "BERT: Pre-training of Deep Bidirectional Transformers", records[0].String(fair4ml.Name))
	assert.Equal(t, "https://arxiv.org/abs/1810.04805", records[0].String(fair4ml.URL))
	assert.Equal(t, []string{"Jacob Devlin", "Ming-Wei Chang"}, records[0].Strings(fair4ml.Author))
	assert.Equal(t, "2018-10-11T00:00:00Z", records[0].String(fair4ml.DatePublished))

	assert.False(t, records[1].Enriched())
}

func TestNormalizeArxivVersion(t *testing.T) {
	assert.Equal(t, "1810.04805", NormalizeArxivVersion("1810.04805v2"))
	assert.Equal(t, "1810.04805", NormalizeArxivVersion(" 1810.04805 "))
}

func TestDatasetClientCroissant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/datasets/squad/croissant", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"SQuAD","description":"Reading comprehension.","url":"https://huggingface.co/datasets/squad","license":"cc-by-4.0","keywords":["qa"]}`)
	})
	mux.HandleFunc("/", http.NotFound)
	server := httptest.NewServer(mux)
	defer server.Close()

	d := NewDatasetClient(server.URL, "", "huggingface", nil)
	records, err := d.FetchDatasets(context.Background(), []string{"squad", "gone"}, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "SQuAD", records[0].String(fair4ml.Name))
	assert.Equal(t, "cc-by-4.0", records[0].String(fair4ml.License))
	assert.False(t, records[1].Enriched())
}

func TestLicenseClientSPDX(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"licenses":[{"licenseId":"Apache-2.0","name":"Apache License 2.0","reference":"https://spdx.org/licenses/Apache-2.0.html","isOsiApproved":true}]}`)
	}))
	defer server.Close()

	l := NewLicenseClient(server.URL, "huggingface", nil)
	records, err := l.FetchLicenses(context.Background(), []string{"apache-2.0", "made-up"}, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Apache License 2.0", records[0].String(fair4ml.Name))
	assert.Contains(t, records[0].Identifiers(), "https://spdx.org/licenses/Apache-2.0.html")
	assert.False(t, records[1].Enriched())
}

func TestLanguageBuilder(t *testing.T) {
	b := NewLanguageBuilder("huggingface", nil)
	records := b.BuildLanguages([]string{"en", "EN", "zz"})

	require.Len(t, records, 2)
	assert.Equal(t, "English", records[0].String(fair4ml.Name))
	assert.Equal(t, "en", records[0].String(fair4ml.TermCode))
	assert.False(t, records[1].Enriched())
}

func TestTaskBuilderUsesCatalogDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"keyword,definition,aliases\n"+
			"text-classification,Assigning labels to text.,sequence-classification\n"), 0o644))
	catalog, err := LoadCatalog(path, nil)
	require.NoError(t, err)

	b := NewTaskBuilder(catalog, "huggingface", nil)
	records := b.BuildTasks([]string{"text-classification", "obscure-task", "text-classification"})

	require.Len(t, records, 2)
	assert.Equal(t, "Assigning labels to text.", records[0].String(fair4ml.Description))
	assert.Equal(t, "obscure-task", records[1].String(fair4ml.Name))
	assert.Empty(t, records[1].String(fair4ml.Description))
}
