package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// rawDatasetMessage is the flat JSON structure published to the source topic.
// Exactly one of Collection or URL is expected; when both are present the
// inline collection wins.
type rawDatasetMessage struct {
	DatasetID  string          `json:"dataset_id"`
	URL        string          `json:"url"`
	Collection json.RawMessage `json:"collection"`
}

// rawFeature keeps geometry and flows as raw JSON: geometry goes through the
// geojson decoder only when a centroid fallback is needed, and flows require
// an order-preserving decode.
type rawFeature struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties struct {
		Name     string          `json:"name"`
		Centroid []float64       `json:"centroid"`
		Flows    json.RawMessage `json:"flows"`
	} `json:"properties"`
}

type rawFeatureCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// ParseRawDataset deserializes a RawEvent's value into a Dataset. Messages
// carrying an inline collection are decoded immediately; URL-only messages
// come back with empty Counties for the resolution step to fill in.
func ParseRawDataset(raw RawEvent) (Dataset, error) {
	var msg rawDatasetMessage
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return Dataset{}, fmt.Errorf("parse raw dataset: %w", err)
	}

	ds := Dataset{
		ID:         msg.DatasetID,
		SourceURL:  msg.URL,
		RawPayload: raw.Value,
	}
	if ds.ID == "" {
		ds.ID = generateDatasetID(raw.Value)
	}

	if len(msg.Collection) > 0 {
		counties, err := DecodeFeatureCollection(msg.Collection)
		if err != nil {
			return Dataset{}, fmt.Errorf("dataset %s: %w", ds.ID, err)
		}
		ds.Counties = counties
		ds.Source = "inline"
	}

	return ds, nil
}

// generateDatasetID produces a deterministic ID from the message payload.
// Deterministic IDs keep reprocessing idempotent for downstream consumers
// that key on dataset ID.
func generateDatasetID(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "ds-" + hex.EncodeToString(hash[:8])
}

// DecodeFeatureCollection decodes a GeoJSON FeatureCollection into the county
// sequence. Feature order is preserved and assigns each county its ID. A
// missing "centroid" property falls back to the area centroid of the feature
// geometry.
func DecodeFeatureCollection(data []byte) ([]County, error) {
	var fc rawFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode feature collection: unexpected type %q", fc.Type)
	}

	counties := make([]County, 0, len(fc.Features))
	for i, f := range fc.Features {
		centroid, err := featureCentroid(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, f.Properties.Name, err)
		}

		flows, err := decodeFlows(f.Properties.Flows)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, f.Properties.Name, err)
		}

		counties = append(counties, County{
			ID:       CountyID(i),
			Name:     f.Properties.Name,
			Centroid: centroid,
			Flows:    flows,
		})
	}
	return counties, nil
}

func featureCentroid(f rawFeature) (orb.Point, error) {
	if c := f.Properties.Centroid; len(c) >= 2 {
		return orb.Point{c[0], c[1]}, nil
	}
	if len(f.Geometry) == 0 {
		return orb.Point{}, fmt.Errorf("no centroid property and no geometry")
	}

	geom, err := geojson.UnmarshalGeometry(f.Geometry)
	if err != nil {
		return orb.Point{}, fmt.Errorf("decode geometry: %w", err)
	}
	center, _ := planar.CentroidArea(geom.Geometry())
	return center, nil
}

// decodeFlows walks the "flows" JSON object token by token, producing flows
// in the document order of its keys. A missing or null flows property is a
// county with no flows.
func decodeFlows(data []byte) ([]Flow, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode flows: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode flows: expected object, got %v", tok)
	}

	var flows []Flow
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode flows: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode flows: non-string key %v", keyTok)
		}

		target, err := ParseCountyID(key)
		if err != nil {
			return nil, err
		}

		var value float64
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode flows: value for key %q: %w", key, err)
		}
		flows = append(flows, Flow{Target: target, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode flows: %w", err)
	}
	return flows, nil
}
