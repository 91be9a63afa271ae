package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Dataset is the domain-rich representation of one source message after
// parsing (and, for URL references, after resolution).
type Dataset struct {
	ID        string
	SourceURL string
	Counties  []County

	// Source records how the counties were obtained: "inline" or "fetched".
	Source string

	RawPayload []byte
}

// LayerBundle is the render-ready document produced from one dataset. The
// renderer consumes the three collections as flat columns and uses MaxNet as
// the upper bound of its color/size normalization domain.
type LayerBundle struct {
	DatasetID   string         `json:"dataset_id"`
	Source      string         `json:"source,omitempty"`
	CountyCount int            `json:"county_count"`
	Arcs        []Arc          `json:"arcs"`
	Sources     []SourceMarker `json:"sources"`
	Targets     []TargetMarker `json:"targets"`
	MaxNet      float64        `json:"max_net"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// BuildLayerBundle assembles the sink-topic document for a resolved dataset
// and its extracted layers, stamping the processing time from the package
// clock so fixtures can freeze it.
func BuildLayerBundle(ds Dataset, layers FlowLayers) LayerBundle {
	return LayerBundle{
		DatasetID:   ds.ID,
		Source:      ds.Source,
		CountyCount: len(ds.Counties),
		Arcs:        layers.Arcs,
		Sources:     layers.Sources,
		Targets:     layers.Targets,
		MaxNet:      layers.MaxNet,
		ProcessedAt: clock.Now(),
	}
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
