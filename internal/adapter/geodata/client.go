// Package geodata fetches county flow datasets referenced by URL and decodes
// them into the domain model. It implements domain.Fetcher.
package geodata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/domain"
	"github.com/couchcryptid/flowmap-etl/internal/observability"
)

// maxDatasetBytes caps response bodies. The largest real dataset (all US
// counties with flows) is under 10 MB; the cap guards against a misbehaving
// origin, not legitimate data.
const maxDatasetBytes = 64 << 20

// Client fetches GeoJSON flow datasets over HTTP.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dataset fetch client with the given per-request timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchDataset downloads and decodes the FeatureCollection at url.
func (c *Client) FetchDataset(ctx context.Context, url string) ([]domain.County, error) {
	start := time.Now()
	counties, err := c.doFetch(ctx, url)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()

	c.logger.Debug("dataset fetched", "url", url, "counties", len(counties))
	return counties, nil
}

func (c *Client) doFetch(ctx context.Context, url string) ([]domain.County, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset origin error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}

	counties, err := domain.DecodeFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return counties, nil
}
