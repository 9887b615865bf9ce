package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultCroissantBaseURL serves Croissant metadata for hub datasets.
const DefaultCroissantBaseURL = "https://huggingface.co"

// DatasetClient resolves dataset ids through the Croissant metadata
// endpoint.
type DatasetClient struct {
	baseURL  string
	token    string
	http     *HTTPClient
	platform string
	logger   *slog.Logger
}

// NewDatasetClient creates a dataset client. token may be empty for
// anonymous access.
func NewDatasetClient(baseURL, token, platform string, logger *slog.Logger) *DatasetClient {
	if baseURL == "" {
		baseURL = DefaultCroissantBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		http:     NewHTTPClient("croissant", logger),
		platform: platform,
		logger:   logger,
	}
}

// croissantDoc is the subset of the Croissant JSON-LD document the
// normalizer consumes.
type croissantDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	License     string   `json:"license"`
	Keywords    []string `json:"keywords"`
	Creator     struct {
		Name string `json:"name"`
	} `json:"creator"`
}

// FetchDatasets resolves dataset ids with bounded parallelism, stubbing
// ids without Croissant metadata.
func (d *DatasetClient) FetchDatasets(ctx context.Context, ids []string, threads int) ([]schema.Record, error) {
	return fetchAll(ctx, ids, threads, d.fetchOne, func(id string, err error) schema.Record {
		d.logger.Debug("stubbing dataset", "dataset", id, "error", err)
		return schema.Stub(fair4ml.KindDataset, d.platform, id, err)
	})
}

func (d *DatasetClient) fetchOne(ctx context.Context, id string) (schema.Record, error) {
	var header http.Header
	if d.token != "" {
		header = http.Header{"Authorization": []string{"Bearer " + d.token}}
	}

	var doc croissantDoc
	if err := d.http.GetJSON(ctx, d.baseURL+"/api/datasets/"+id+"/croissant", header, &doc); err != nil {
		return nil, err
	}

	r := schema.New(fair4ml.KindDataset, d.platform, id)
	name := doc.Name
	if name == "" {
		name = id
	}
	r.Set(fair4ml.Name, name, schema.Meta(schema.MethodAPI, 1.0, "name"))
	url := doc.URL
	if url == "" {
		url = d.baseURL + "/datasets/" + id
	}
	r.AddIdentifier(url)
	r.Set(fair4ml.URL, url, schema.Meta(schema.MethodAPI, 1.0, "url"))
	r.Set(fair4ml.ConformsTo, "http://mlcommons.org/croissant/1.0", schema.Meta(schema.MethodAPI, 1.0, "conformsTo"))
	if doc.Description != "" {
		r.Set(fair4ml.Description, doc.Description, schema.Meta(schema.MethodAPI, 1.0, "description"))
	}
	if doc.License != "" {
		r.Set(fair4ml.License, doc.License, schema.Meta(schema.MethodAPI, 1.0, "license"))
	}
	if doc.Creator.Name != "" {
		r.Set(fair4ml.Creator, doc.Creator.Name, schema.Meta(schema.MethodAPI, 1.0, "creator"))
	}
	if len(doc.Keywords) > 0 {
		r.Set(fair4ml.Keywords, doc.Keywords, schema.Meta(schema.MethodAPI, 1.0, "keywords"))
	}
	return r, nil
}
