// Package openml extracts run and flow metadata from the OpenML
// experiment-tracking registry.
package openml

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zbmed-semtec/mlentory/config"
)

// Platform is the platform name used in run folders and minted IRIs.
const Platform = "openml"

// DefaultBaseURL is the public OpenML JSON API endpoint.
const DefaultBaseURL = "https://www.openml.org/api/v1/json"

// RawRun is the raw primary record of one OpenML run: the trained model
// instance produced by applying a flow to a task.
type RawRun struct {
	RunID      int    `json:"run_id,string"`
	TaskID     int    `json:"task_id,string"`
	FlowID     int    `json:"flow_id,string"`
	FlowName   string `json:"flow_name,omitempty"`
	Uploader   string `json:"uploader,omitempty"`
	UploadTime string `json:"upload_time,omitempty"`
	TaskType   string `json:"task_type,omitempty"`
	DatasetID  int    `json:"dataset_id,string,omitempty"`

	Stub  bool   `json:"stub,omitempty"`
	Error string `json:"error,omitempty"`
}

// ID returns the stable source id used for minting.
func (r RawRun) ID() string { return strconv.Itoa(r.RunID) }

// URL returns the registry page of the run.
func (r RawRun) URL() string { return "https://www.openml.org/r/" + r.ID() }

// Informative reports whether the run carries enough metadata to be
// worth normalizing: a flow name and a task type.
func (r RawRun) Informative() bool {
	if r.Stub {
		return true
	}
	return r.FlowName != "" && r.TaskType != ""
}

type runList struct {
	Runs struct {
		Run []RawRun `json:"run"`
	} `json:"runs"`
}

type runDetail struct {
	Run RawRun `json:"run"`
}

// Client talks to the OpenML JSON API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates an OpenML client. baseURL falls back to the public
// endpoint.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: config.HTTPTimeout},
		logger:  logger,
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openml request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openml returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode openml response: %w", err)
	}
	return nil
}

// ListRuns fetches up to limit runs starting at offset.
func (c *Client) ListRuns(ctx context.Context, limit, offset int) ([]RawRun, error) {
	var list runList
	path := fmt.Sprintf("/run/list/limit/%d/offset/%d", limit, offset)
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return list.Runs.Run, nil
}

// GetRun fetches one run by id.
func (c *Client) GetRun(ctx context.Context, id int) (RawRun, error) {
	var detail runDetail
	if err := c.get(ctx, "/run/"+strconv.Itoa(id), &detail); err != nil {
		return RawRun{}, err
	}
	if detail.Run.RunID == 0 {
		detail.Run.RunID = id
	}
	return detail.Run, nil
}

// Extractor produces raw OpenML run records for a run folder.
type Extractor struct {
	client *Client
	cfg    config.PlatformConfig
	logger *slog.Logger
}

// NewExtractor creates an OpenML extractor.
func NewExtractor(client *Client, cfg config.PlatformConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, cfg: cfg, logger: logger}
}

// FetchPrimary fetches the primary run set honoring num_instances and
// offset. Runs below the information threshold are dropped and the
// result is deduplicated by run id.
func (e *Extractor) FetchPrimary(ctx context.Context) ([]RawRun, error) {
	limit := e.cfg.NumInstances
	if limit < 1 {
		limit = e.cfg.NumModels
	}

	listed, err := e.client.ListRuns(ctx, limit, e.cfg.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list openml runs: %w", err)
	}

	kept := make([]RawRun, 0, len(listed))
	seen := make(map[int]bool, len(listed))
	for _, r := range listed {
		if seen[r.RunID] {
			continue
		}
		seen[r.RunID] = true
		if !r.Informative() {
			e.logger.Debug("skipping uninformative run", "run", r.RunID)
			continue
		}
		kept = append(kept, r)
		if len(kept) == limit {
			break
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].RunID < kept[j].RunID })

	e.logger.Info("fetched primary runs", "listed", len(listed), "kept", len(kept))
	return kept, nil
}

// FetchSpecificRuns fetches the given run ids with bounded parallelism,
// emitting a stub record for each id that cannot be fetched.
func (e *Extractor) FetchSpecificRuns(ctx context.Context, ids []int, threads int) ([]RawRun, error) {
	if threads < 1 {
		threads = 1
	}

	seen := make(map[int]bool, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	runs := make([]RawRun, len(unique))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(threads)
	for i, id := range unique {
		group.Go(func() error {
			r, err := e.client.GetRun(ctx, id)
			if err != nil {
				e.logger.Warn("stubbing run after fetch failure", "run", id, "error", err)
				r = RawRun{RunID: id, Stub: true, Error: err.Error()}
			}
			runs[i] = r
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID < runs[j].RunID })
	return runs, nil
}
