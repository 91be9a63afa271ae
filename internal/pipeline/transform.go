package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/domain"
	"github.com/couchcryptid/flowmap-etl/internal/observability"
)

// FlowTransformer implements Transformer using the domain transform functions
// with optional by-URL dataset resolution.
type FlowTransformer struct {
	fetcher domain.Fetcher
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a FlowTransformer. Pass a nil fetcher to disable
// by-URL dataset resolution; URL-only messages then fail transform.
func NewTransformer(fetcher domain.Fetcher, metrics *observability.Metrics, logger *slog.Logger) *FlowTransformer {
	return &FlowTransformer{
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *FlowTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	ds, err := domain.ParseRawDataset(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	ds, err = domain.ResolveDataset(ctx, ds, t.fetcher, t.logger)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	layers, err := domain.ExtractFlowLayers(ds.Counties)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("extract dataset %s: %w", ds.ID, err)
	}

	bundle := domain.BuildLayerBundle(ds, layers)

	t.metrics.CountiesPerDataset.Observe(float64(bundle.CountyCount))
	t.metrics.ArcsPerDataset.Observe(float64(len(bundle.Arcs)))
	t.metrics.SourcesPerDataset.Observe(float64(len(bundle.Sources)))

	value, err := json.Marshal(bundle)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize bundle %s: %w", bundle.DatasetID, err)
	}

	return domain.OutputEvent{
		Key:   []byte(bundle.DatasetID),
		Value: value,
		Headers: map[string]string{
			"dataset_id":   bundle.DatasetID,
			"counties":     strconv.Itoa(bundle.CountyCount),
			"processed_at": bundle.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
