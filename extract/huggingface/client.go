package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zbmed-semtec/mlentory/config"
)

// DefaultBaseURL is the public hub endpoint.
const DefaultBaseURL = "https://huggingface.co"

// HubClient talks to the hub API for primary model records.
type HubClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewHubClient creates a hub client. baseURL falls back to the public
// endpoint; token may be empty for anonymous access.
func NewHubClient(baseURL, token string, logger *slog.Logger) *HubClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HubClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: config.HTTPTimeout},
		logger:  logger,
	}
}

func (c *HubClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hub returned status %d for %s", resp.StatusCode, path)
	}

	if raw, ok := out.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read hub response: %w", err)
		}
		*raw = string(data)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode hub response: %w", err)
	}
	return nil
}

// ListModels fetches up to limit models starting at offset. With
// updateRecent the listing is ordered by last modification so recently
// changed models come first.
func (c *HubClient) ListModels(ctx context.Context, limit, offset int, updateRecent bool) ([]RawModel, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit+offset))
	params.Set("full", "true")
	if updateRecent {
		params.Set("sort", "lastModified")
		params.Set("direction", "-1")
	}

	var models []RawModel
	if err := c.get(ctx, "/api/models?"+params.Encode(), &models); err != nil {
		return nil, err
	}
	if offset >= len(models) {
		return nil, nil
	}
	return models[offset:], nil
}

// GetModel fetches one model record by id.
func (c *HubClient) GetModel(ctx context.Context, id string) (RawModel, error) {
	var model RawModel
	if err := c.get(ctx, "/api/models/"+id, &model); err != nil {
		return RawModel{}, err
	}
	if model.ID == "" {
		model.ID = id
	}
	return model, nil
}

// GetModelCard fetches the raw README of a model, "" when the model has
// none.
func (c *HubClient) GetModelCard(ctx context.Context, id string) (string, error) {
	var card string
	err := c.get(ctx, "/"+id+"/resolve/main/README.md", &card)
	if err != nil {
		return "", err
	}
	return card, nil
}
