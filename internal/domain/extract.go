package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// MinArcMagnitude is the threshold below which a flow produces no arc or
	// source marker. The comparison is strict: a flow of exactly ±50 qualifies.
	MinArcMagnitude = 50.0

	// SourceMarkerRadius is the constant radius assigned to source markers.
	SourceMarkerRadius = 3.0

	// TargetMarkerElevation is the fixed third coordinate of target marker
	// positions.
	TargetMarkerElevation = 10.0
)

var (
	// ErrEmptyDataset reports a dataset with no counties; the normalization
	// maximum is undefined for empty input.
	ErrEmptyDataset = errors.New("dataset has no counties")

	// ErrInvalidFlowTarget reports a flow whose target key is malformed or
	// references a county outside the dataset.
	ErrInvalidFlowTarget = errors.New("invalid flow target")
)

// ExtractFlowLayers transforms a county sequence into arc and marker layers.
//
// Counties are processed in order, and each county's flows in document order.
// Every flow contributes to the county's gain/loss totals; flows at or above
// MinArcMagnitude additionally emit one source marker and, for the first flow
// seen per unordered county pair, one arc oriented toward the gaining county.
// Each county emits exactly one target marker, flows or not. Target markers
// are stable-sorted by descending |Net| and MaxNet is taken from the head.
//
// The transformation is a single synchronous pass with no shared state, so
// concurrent calls on different inputs are safe. No partial result is
// returned on error.
func ExtractFlowLayers(counties []County) (FlowLayers, error) {
	if len(counties) == 0 {
		return FlowLayers{}, ErrEmptyDataset
	}

	layers := FlowLayers{
		Targets: make([]TargetMarker, 0, len(counties)),
	}
	seen := make(map[PairKey]struct{})

	for i, county := range counties {
		var gain, loss float64

		for _, flow := range county.Flows {
			if flow.Value > 0 {
				gain += flow.Value
			} else {
				loss += flow.Value
			}

			if math.Abs(flow.Value) < MinArcMagnitude {
				continue
			}

			if flow.Target < 0 || int(flow.Target) >= len(counties) {
				return FlowLayers{}, fmt.Errorf(
					"county %d (%s) flow to county %d: %w",
					i, county.Name, flow.Target, ErrInvalidFlowTarget,
				)
			}
			origin := counties[flow.Target]

			direction := 1
			if flow.Value < 0 {
				direction = -1
			}

			// Every qualifying flow gets a source marker, even when the arc
			// for its pair was already emitted.
			layers.Sources = append(layers.Sources, SourceMarker{
				Position:  origin.Centroid,
				Target:    county.Centroid,
				Name:      origin.Name,
				Radius:    SourceMarkerRadius,
				Direction: -direction,
			})

			key := NewPairKey(CountyID(i), flow.Target)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			arc := Arc{Source: origin.Centroid, Target: county.Centroid, Value: flow.Value}
			if flow.Value < 0 {
				// A negative flow drains this county: the arc points away.
				arc.Source, arc.Target = arc.Target, arc.Source
			}
			layers.Arcs = append(layers.Arcs, arc)
		}

		layers.Targets = append(layers.Targets, TargetMarker{
			Position: [3]float64{county.Centroid[0], county.Centroid[1], TargetMarkerElevation},
			Gain:     gain,
			Loss:     loss,
			Net:      gain + loss,
			Name:     county.Name,
		})
	}

	// Descending |Net| determines visual stacking; stable so counties with
	// equal magnitude keep dataset order.
	sort.SliceStable(layers.Targets, func(a, b int) bool {
		return math.Abs(layers.Targets[a].Net) > math.Abs(layers.Targets[b].Net)
	})
	layers.MaxNet = math.Abs(layers.Targets[0].Net)

	return layers, nil
}
