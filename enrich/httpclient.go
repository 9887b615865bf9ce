// Package enrich resolves entity references against external services:
// Wikipedia for keywords, arXiv for articles, Croissant endpoints for
// datasets, SPDX for licenses, ISO-639 for languages. Every client uses
// bounded parallelism and stubs failed lookups instead of dropping ids.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/zbmed-semtec/mlentory/config"
)

// ErrNotFound marks a lookup whose subject does not exist upstream.
// Not-found is permanent: it is never retried, and the caller stubs.
var ErrNotFound = errors.New("entity not found")

const maxRetries = 3

// HTTPClient wraps HTTP GETs with exponential-backoff retry and a
// per-service circuit breaker, so one degraded upstream cannot stall a
// whole enrichment stage.
type HTTPClient struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPClient creates a client for one upstream service. name labels
// the circuit breaker and log lines.
func NewHTTPClient(name string, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Missing entities are an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return &HTTPClient{
		name:    name,
		http:    &http.Client{Timeout: config.HTTPTimeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Get fetches url, retrying transient failures. A 404 returns
// ErrNotFound without retry.
func (c *HTTPClient) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var body []byte
	operation := func() error {
		result, err := c.breaker.Execute(func() (any, error) {
			return c.fetch(ctx, url, header)
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, gobreaker.ErrOpenState) {
				return backoff.Permanent(err)
			}
			c.logger.Debug("retrying upstream request", "service", c.name, "url", url, "error", err)
			return err
		}
		body = result.([]byte)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON response into out.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := c.Get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

func (c *HTTPClient) fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
