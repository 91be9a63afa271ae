//go:build geodata

package geodata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a real dataset origin and require a DATASET_URL env var
// pointing at a county flow FeatureCollection.
// Run with: go test -tags=geodata ./internal/adapter/geodata/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("DATASET_URL") == "" {
		t.Fatal("DATASET_URL must be set to run smoke tests")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_FetchDataset(t *testing.T) {
	c := smokeClient(t)

	counties, err := c.FetchDataset(context.Background(), os.Getenv("DATASET_URL"))
	require.NoError(t, err)

	assert.NotEmpty(t, counties)
	for _, county := range counties {
		assert.NotEmpty(t, county.Name)
	}
}
