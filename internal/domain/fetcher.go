package domain

import "context"

// Fetcher retrieves a flow dataset referenced by URL.
type Fetcher interface {
	// FetchDataset downloads and decodes the FeatureCollection at url.
	FetchDataset(ctx context.Context, url string) ([]County, error)
}
