// Package domain models county-level flow datasets and their transformation
// into render-ready arc and marker layers.
//
// # Data Source
//
// A flow dataset is a GeoJSON FeatureCollection in which each feature is one
// county. The upstream publisher emits datasets to the Kafka source topic,
// either inline or as a URL reference resolved by the geodata adapter.
// Relevant feature properties:
//
//	"name"      display name, e.g. "Los Angeles, CA"
//	"centroid"  [longitude, latitude]; when absent the centroid is computed
//	            from the feature geometry
//	"flows"     JSON object mapping a target county ID (stringified integer)
//	            to a signed net flow value
//
// # County Identity
//
// A county's ID is its zero-based position in the feature sequence, and flow
// targets reference counties by that position. The order of features in the
// collection is therefore significant and must be preserved end to end.
//
// # Flow Conventions
//
// Flow values are signed: from the owning county's perspective a positive
// value is a gain (people/resources arriving) and a negative value is a loss.
// The same movement can appear on both endpoints with opposite signs; arc
// extraction deduplicates by unordered county pair, keeping the first flow
// encountered in document order. See [ExtractFlowLayers].
//
// Flows with magnitude below [MinArcMagnitude] are visual noise for the
// renderer: they contribute to per-county gain/loss totals but produce no arc
// or source marker.
//
// # Flow Object Ordering
//
// The "flows" property is decoded with a token-level JSON walk rather than
// into a Go map. Which flow of a pair survives deduplication depends on
// traversal order, so decoding must preserve the document order of the
// object's keys. Go maps (and every GeoJSON library's property bag) do not.
package domain
