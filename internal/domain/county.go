package domain

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
)

// CountyID identifies a county by its zero-based position in the dataset's
// feature sequence.
type CountyID int

// ParseCountyID parses a stringified flow-target key into a CountyID.
// Range validation against the dataset happens during extraction.
func ParseCountyID(s string) (CountyID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("flow target %q: %w", s, ErrInvalidFlowTarget)
	}
	return CountyID(n), nil
}

// Flow is one entry of a county's flow mapping: a signed net flow involving
// the target county. Positive means the owning county gains.
type Flow struct {
	Target CountyID
	Value  float64
}

// County is one feature of a flow dataset. Flows preserve the document order
// of the source JSON object.
type County struct {
	ID       CountyID
	Name     string
	Centroid orb.Point // [lon, lat]
	Flows    []Flow
}

// PairKey is the unordered county pair used to deduplicate arcs.
type PairKey struct {
	Lo, Hi CountyID
}

// NewPairKey returns the canonical (sorted) key for a county pair.
func NewPairKey(a, b CountyID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Arc is a deduplicated geometric edge between two county centroids. The
// target end always points at the gaining county; Value keeps the sign of the
// flow that produced the arc.
type Arc struct {
	Source orb.Point `json:"source"`
	Target orb.Point `json:"target"`
	Value  float64   `json:"value"`
}

// SourceMarker is a point rendered at the origin county of one qualifying
// flow. Source markers are emitted per flow, not per pair. Direction is +1
// or -1, the inverse of the flow's sign as stored on the destination county.
type SourceMarker struct {
	Position  orb.Point `json:"position"`
	Target    orb.Point `json:"target"`
	Name      string    `json:"name"`
	Radius    float64   `json:"radius"`
	Direction int       `json:"direction"`
}

// TargetMarker is a point rendered at a county's centroid summarizing its
// aggregate flow. Gain sums the positive flow values, Loss the non-positive
// ones, and Net is their sum. Position carries a fixed elevation so markers
// stack above the arc layer.
type TargetMarker struct {
	Position [3]float64 `json:"position"` // [lon, lat, elevation]
	Gain     float64    `json:"gain"`
	Loss     float64    `json:"loss"`
	Net      float64    `json:"net"`
	Name     string     `json:"name"`
}

// FlowLayers is the result of extracting one dataset: the three record
// collections plus the normalization domain bound.
type FlowLayers struct {
	Arcs    []Arc
	Sources []SourceMarker
	Targets []TargetMarker

	// MaxNet is max(|Net|) over all target markers, the upper bound of the
	// renderer's color/size normalization domain.
	MaxNet float64
}
