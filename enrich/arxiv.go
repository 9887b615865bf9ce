package enrich

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultArxivBaseURL is the public arXiv export API.
const DefaultArxivBaseURL = "https://export.arxiv.org"

const (
	arxivBatchSize  = 20
	arxivBatchDelay = 6 * time.Second
)

var arxivVersionRe = regexp.MustCompile(`v\d+$`)

// ArxivClient resolves arXiv ids to article records. Requests are
// batched and spaced out to respect arXiv's rate policy; every
// requested id appears in the output, stubbed on miss.
type ArxivClient struct {
	baseURL  string
	http     *HTTPClient
	platform string
	logger   *slog.Logger
}

// NewArxivClient creates an arXiv client. baseURL falls back to the
// public export API.
func NewArxivClient(baseURL, platform string, logger *slog.Logger) *ArxivClient {
	if baseURL == "" {
		baseURL = DefaultArxivBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArxivClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     NewHTTPClient("arxiv", logger),
		platform: platform,
		logger:   logger,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// FetchArticles resolves the given arXiv ids. Version suffixes are
// normalized away before querying, so 1810.04805v2 and 1810.04805
// resolve to the same article.
func (a *ArxivClient) FetchArticles(ctx context.Context, ids []string) ([]schema.Record, error) {
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = NormalizeArxivVersion(id); id != "" {
			normalized = append(normalized, id)
		}
	}
	unique := dedupe(normalized)

	found := make(map[string]schema.Record, len(unique))
	for start := 0; start < len(unique); start += arxivBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(arxivBatchDelay):
			}
		}

		end := min(start+arxivBatchSize, len(unique))
		batch := unique[start:end]
		entries, err := a.fetchBatch(ctx, batch)
		if err != nil {
			a.logger.Warn("arxiv batch failed, stubbing batch", "size", len(batch), "error", err)
			continue
		}
		for _, entry := range entries {
			id := NormalizeArxivVersion(entry.arxivID())
			if id == "" || entry.Title == "" {
				continue
			}
			found[id] = a.record(id, entry)
		}
	}

	records := make([]schema.Record, 0, len(unique))
	for _, id := range unique {
		if r, ok := found[id]; ok {
			records = append(records, r)
			continue
		}
		a.logger.Debug("stubbing article", "arxiv_id", id)
		records = append(records, schema.Stub(fair4ml.KindArticle, a.platform, id, ErrNotFound))
	}
	return records, nil
}

func (a *ArxivClient) fetchBatch(ctx context.Context, ids []string) ([]atomEntry, error) {
	url := fmt.Sprintf("%s/api/query?id_list=%s&max_results=%d",
		a.baseURL, strings.Join(ids, ","), len(ids))
	body, err := a.http.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}
	return feed.Entries, nil
}

func (a *ArxivClient) record(id string, entry atomEntry) schema.Record {
	r := schema.New(fair4ml.KindArticle, a.platform, id)
	r.AddIdentifier("https://arxiv.org/abs/" + id)
	r.Set(fair4ml.Name, collapseWhitespace(entry.Title), schema.Meta(schema.MethodAPI, 1.0, "title"))
	r.Set(fair4ml.URL, "https://arxiv.org/abs/"+id, schema.Meta(schema.MethodAPI, 1.0, "id"))
	if summary := collapseWhitespace(entry.Summary); summary != "" {
		r.Set(fair4ml.Description, summary, schema.Meta(schema.MethodAPI, 1.0, "summary"))
	}
	if date, err := schema.NormalizeDatetime(entry.Published); err == nil {
		r.Set(fair4ml.DatePublished, date, schema.Meta(schema.MethodAPI, 1.0, "published"))
	}
	if len(entry.Authors) > 0 {
		authors := make([]string, 0, len(entry.Authors))
		for _, author := range entry.Authors {
			if author.Name != "" {
				authors = append(authors, author.Name)
			}
		}
		r.Set(fair4ml.Author, authors, schema.Meta(schema.MethodAPI, 1.0, "author"))
	}
	return r
}

// arxivID extracts the bare id from an Atom entry id URL.
func (e atomEntry) arxivID() string {
	idx := strings.LastIndex(e.ID, "/abs/")
	if idx < 0 {
		return ""
	}
	return e.ID[idx+len("/abs/"):]
}

// NormalizeArxivVersion strips a trailing version suffix from an arXiv
// id.
func NormalizeArxivVersion(id string) string {
	return arxivVersionRe.ReplaceAllString(strings.TrimSpace(id), "")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
