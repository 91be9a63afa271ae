package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// ResolveDataset ensures a parsed dataset has its counties loaded. Inline
// datasets pass through untouched; URL references are fetched. Resolution
// failures are terminal for the message: there is nothing to transform
// without the counties.
func ResolveDataset(ctx context.Context, ds Dataset, fetcher Fetcher, logger *slog.Logger) (Dataset, error) {
	if len(ds.Counties) > 0 {
		return ds, nil
	}

	if ds.SourceURL == "" {
		// Nothing inline and nothing to fetch; let extraction report the
		// empty dataset.
		return ds, nil
	}
	if fetcher == nil {
		return ds, fmt.Errorf("dataset %s references %s but dataset fetching is disabled", ds.ID, ds.SourceURL)
	}

	counties, err := fetcher.FetchDataset(ctx, ds.SourceURL)
	if err != nil {
		logger.Warn("dataset fetch failed",
			"dataset_id", ds.ID,
			"url", ds.SourceURL,
			"error", err,
		)
		return ds, fmt.Errorf("fetch dataset %s: %w", ds.ID, err)
	}

	ds.Counties = counties
	ds.Source = "fetched"
	return ds, nil
}
