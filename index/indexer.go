package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// BulkBatchSize is the number of documents per bulk request.
const BulkBatchSize = 200

// Indexer writes model documents to the document store.
type Indexer struct {
	es     *elasticsearch.Client
	logger *slog.Logger
}

// NewIndexer creates a document indexer.
func NewIndexer(es *elasticsearch.Client, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{es: es, logger: logger}
}

// EnsureIndex creates the index with the model mapping if it does not
// exist. Existing indices are left untouched.
func (i *Indexer) EnsureIndex(ctx context.Context, name string) error {
	exists, err := i.es.Indices.Exists([]string{name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", name, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := i.es.Indices.Create(name,
		i.es.Indices.Create.WithBody(strings.NewReader(Mapping)),
		i.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index creation for %s returned %s", name, res.Status())
	}
	i.logger.Info("created index", "index", name)
	return nil
}

// CleanIndex removes every document from the index, preserving the
// mapping.
func (i *Indexer) CleanIndex(ctx context.Context, name string) error {
	res, err := i.es.DeleteByQuery([]string{name},
		strings.NewReader(`{"query":{"match_all":{}}}`),
		i.es.DeleteByQuery.WithContext(ctx),
		i.es.DeleteByQuery.WithRefresh(true))
	if err != nil {
		return fmt.Errorf("failed to clean index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index clean for %s returned %s", name, res.Status())
	}
	i.logger.Info("cleaned index", "index", name)
	return nil
}

// IndexModel indexes one model record under its MLentory short id.
func (i *Indexer) IndexModel(ctx context.Context, name string, r schema.Record, translation map[string]string, platform string) error {
	doc := BuildDocument(r, platform, translation)
	if doc.DBIdentifier == "" {
		return fmt.Errorf("record lacks an MLentory IRI")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      name,
		DocumentID: fair4ml.ShortID(doc.DBIdentifier),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing %s returned %s", doc.DBIdentifier, res.Status())
	}
	return nil
}

// BulkIndex indexes a record batch in bulk requests of BulkBatchSize
// documents. Records without an MLentory IRI are skipped and counted as
// failures in the report.
func (i *Indexer) BulkIndex(ctx context.Context, name string, records []schema.Record, translation map[string]string, platform string) (indexed, failed int, err error) {
	for start := 0; start < len(records); start += BulkBatchSize {
		end := min(start+BulkBatchSize, len(records))

		var buf bytes.Buffer
		batched := 0
		for _, r := range records[start:end] {
			doc := BuildDocument(r, platform, translation)
			if doc.DBIdentifier == "" {
				failed++
				continue
			}
			action := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, name, fair4ml.ShortID(doc.DBIdentifier))
			payload, err := json.Marshal(doc)
			if err != nil {
				failed++
				continue
			}
			buf.WriteString(action)
			buf.WriteByte('\n')
			buf.Write(payload)
			buf.WriteByte('\n')
			batched++
		}
		if batched == 0 {
			continue
		}

		res, err := i.es.Bulk(bytes.NewReader(buf.Bytes()),
			i.es.Bulk.WithContext(ctx),
			i.es.Bulk.WithRefresh("true"))
		if err != nil {
			return indexed, failed, fmt.Errorf("bulk request failed: %w", err)
		}
		if res.IsError() {
			res.Body.Close()
			return indexed, failed, fmt.Errorf("bulk request returned %s", res.Status())
		}

		var report struct {
			Errors bool `json:"errors"`
			Items  []map[string]struct {
				Status int `json:"status"`
			} `json:"items"`
		}
		decodeErr := json.NewDecoder(res.Body).Decode(&report)
		res.Body.Close()
		if decodeErr != nil {
			return indexed, failed, fmt.Errorf("failed to decode bulk response: %w", decodeErr)
		}
		if !report.Errors {
			indexed += batched
			continue
		}
		for _, item := range report.Items {
			for _, result := range item {
				if result.Status >= 200 && result.Status < 300 {
					indexed++
				} else {
					failed++
				}
			}
		}
	}

	i.logger.Info("bulk indexed models", "index", name, "indexed", indexed, "failed", failed)
	return indexed, failed, nil
}
