package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawDataset_InlineCollection(t *testing.T) {
	value := []byte(`{
		"dataset_id": "county-migration-2023",
		"collection": {
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature", "properties": {"name": "A", "centroid": [-118.2, 34.0], "flows": {"1": 120, "2": -65}}},
				{"type": "Feature", "properties": {"name": "B", "centroid": [-97.7, 30.3], "flows": {"0": -120}}},
				{"type": "Feature", "properties": {"name": "C", "centroid": [-87.6, 41.9]}}
			]
		}
	}`)

	ds, err := ParseRawDataset(RawEvent{Value: value})
	require.NoError(t, err)

	assert.Equal(t, "county-migration-2023", ds.ID)
	assert.Equal(t, "inline", ds.Source)
	assert.Empty(t, ds.SourceURL)
	assert.Equal(t, value, ds.RawPayload)

	require.Len(t, ds.Counties, 3)
	a := ds.Counties[0]
	assert.Equal(t, CountyID(0), a.ID)
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, orb.Point{-118.2, 34.0}, a.Centroid)
	assert.Equal(t, []Flow{{Target: 1, Value: 120}, {Target: 2, Value: -65}}, a.Flows)

	assert.Empty(t, ds.Counties[2].Flows, "county without flows property")
}

func TestParseRawDataset_URLReference(t *testing.T) {
	value := []byte(`{"url": "https://example.com/flows/ca.geojson"}`)

	ds, err := ParseRawDataset(RawEvent{Value: value})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/flows/ca.geojson", ds.SourceURL)
	assert.Empty(t, ds.Counties)
	assert.Empty(t, ds.Source)
	assert.True(t, len(ds.ID) > 3 && ds.ID[:3] == "ds-", "generated ID: %s", ds.ID)

	// Same payload, same ID: reprocessing stays idempotent downstream.
	ds2, err := ParseRawDataset(RawEvent{Value: value})
	require.NoError(t, err)
	assert.Equal(t, ds.ID, ds2.ID)
}

func TestParseRawDataset_InvalidJSON(t *testing.T) {
	_, err := ParseRawDataset(RawEvent{Value: []byte("not-json{{{")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse raw dataset")
}

func TestDecodeFeatureCollection_FlowOrderPreserved(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "A", "centroid": [0, 0], "flows": {"3": 60, "1": -70, "2": 50}}},
			{"type": "Feature", "properties": {"name": "B", "centroid": [1, 1]}},
			{"type": "Feature", "properties": {"name": "C", "centroid": [2, 2]}},
			{"type": "Feature", "properties": {"name": "D", "centroid": [3, 3]}}
		]
	}`)

	counties, err := DecodeFeatureCollection(data)
	require.NoError(t, err)

	// Document order, not numeric key order: dedup depends on it.
	assert.Equal(t, []Flow{
		{Target: 3, Value: 60},
		{Target: 1, Value: -70},
		{Target: 2, Value: 50},
	}, counties[0].Flows)
}

func TestDecodeFeatureCollection_CentroidFromGeometry(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]},
				"properties": {"name": "square"}
			}
		]
	}`)

	counties, err := DecodeFeatureCollection(data)
	require.NoError(t, err)

	require.Len(t, counties, 1)
	assert.InDelta(t, 1.0, counties[0].Centroid[0], 1e-9)
	assert.InDelta(t, 1.0, counties[0].Centroid[1], 1e-9)
}

func TestDecodeFeatureCollection_MalformedFlowKey(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "A", "centroid": [0, 0], "flows": {"not-a-number": 100}}}
		]
	}`)

	_, err := DecodeFeatureCollection(data)
	require.ErrorIs(t, err, ErrInvalidFlowTarget)
	assert.Contains(t, err.Error(), "not-a-number")
}

func TestDecodeFeatureCollection_NullFlows(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "A", "centroid": [0, 0], "flows": null}}
		]
	}`)

	counties, err := DecodeFeatureCollection(data)
	require.NoError(t, err)
	assert.Empty(t, counties[0].Flows)
}

func TestDecodeFeatureCollection_NotACollection(t *testing.T) {
	_, err := DecodeFeatureCollection([]byte(`{"type": "Feature"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected type")
}

func TestDecodeFeatureCollection_NoCentroidNoGeometry(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "nowhere"}}
		]
	}`)

	_, err := DecodeFeatureCollection(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}
