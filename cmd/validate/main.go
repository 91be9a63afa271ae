// Command validate performs end-to-end data integrity checks across the mock
// data fixtures: the source GeoJSON, the raw source-topic message, and the
// expected layer bundle. It verifies dataset integrity, fixture fidelity,
// transform reproducibility, and layer invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -geojson data/mock/county_flows.geojson \
//	  -message data/mock/county_flows_message.json \
//	  -bundle data/mock/county_flows_bundle.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// frozenClock must match genmock for ProcessedAt reproducibility.
var frozenClock = time.Date(2024, time.March, 12, 6, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	geojsonPath := flag.String("geojson", "", "path to the county flow GeoJSON fixture")
	messagePath := flag.String("message", "", "path to the raw source-topic message fixture")
	bundlePath := flag.String("bundle", "", "path to the expected layer bundle fixture")
	flag.Parse()

	if *geojsonPath == "" || *messagePath == "" || *bundlePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*geojsonPath, *messagePath, *bundlePath); code != 0 {
		os.Exit(code)
	}
}

func run(geojsonPath, messagePath, bundlePath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(frozenClock))
	defer domain.SetClock(nil)

	fmt.Println("=== County Flow Fixture Validation ===")
	fmt.Println()

	geojsonData, err := os.ReadFile(geojsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read geojson: %v\n", err)
		return 1
	}

	messageData, err := os.ReadFile(messagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read message fixture: %v\n", err)
		return 1
	}

	bundleData, err := os.ReadFile(bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read bundle fixture: %v\n", err)
		return 1
	}

	counties, err := domain.DecodeFeatureCollection(geojsonData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode geojson: %v\n", err)
		return 1
	}

	var expected domain.LayerBundle
	if err := json.Unmarshal(bundleData, &expected); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode bundle fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDataset(counties),
		validateMessageFidelity(messageData, geojsonData),
		validateReproducibility(messageData, &expected),
		validateLayerInvariants(&expected, counties),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Counties: %d, arcs: %d, sources: %d, targets: %d\n",
		len(counties), len(expected.Arcs), len(expected.Sources), len(expected.Targets))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Dataset Integrity ──
// Validates the county sequence decoded from the GeoJSON fixture.

func validateDataset(counties []domain.County) *phase {
	p := &phase{name: "Phase 1: Dataset Integrity (GeoJSON)"}

	if len(counties) == 0 {
		p.errorf("fixture has no counties")
		return p
	}

	for _, c := range counties {
		if c.Name == "" {
			p.errorf("county %d: missing name", c.ID)
		}
		if c.Centroid[0] == 0 && c.Centroid[1] == 0 {
			p.errorf("county %d (%s): centroid is origin, likely missing", c.ID, c.Name)
		}
		if c.Centroid[0] < -180 || c.Centroid[0] > 180 || c.Centroid[1] < -90 || c.Centroid[1] > 90 {
			p.errorf("county %d (%s): centroid (%g, %g) outside lon/lat bounds", c.ID, c.Name, c.Centroid[0], c.Centroid[1])
		}
		for _, f := range c.Flows {
			if f.Target < 0 || int(f.Target) >= len(counties) {
				p.errorf("county %d (%s): flow target %d out of range [0, %d)", c.ID, c.Name, f.Target, len(counties))
			}
		}
	}
	return p
}

// ── Phase 2: Message Fidelity ──
// Validates that the message fixture embeds the GeoJSON fixture unchanged.

func validateMessageFidelity(messageData, geojsonData []byte) *phase {
	p := &phase{name: "Phase 2: Message Fidelity (embedded GeoJSON)"}

	var msg struct {
		DatasetID  string          `json:"dataset_id"`
		Collection json.RawMessage `json:"collection"`
	}
	if err := json.Unmarshal(messageData, &msg); err != nil {
		p.errorf("decode message: %v", err)
		return p
	}

	if msg.DatasetID == "" {
		p.errorf("message has no dataset_id")
	}
	if len(msg.Collection) == 0 {
		p.errorf("message has no embedded collection")
		return p
	}

	var wantCompact, gotCompact bytes.Buffer
	if err := json.Compact(&wantCompact, geojsonData); err != nil {
		p.errorf("compact geojson: %v", err)
		return p
	}
	if err := json.Compact(&gotCompact, msg.Collection); err != nil {
		p.errorf("compact embedded collection: %v", err)
		return p
	}
	if !bytes.Equal(wantCompact.Bytes(), gotCompact.Bytes()) {
		p.errorf("embedded collection differs from the GeoJSON fixture; regenerate with genmock")
	}
	return p
}

// ── Phase 3: Transform Reproducibility ──
// Re-runs the ETL transformation on the message fixture and compares the
// result with the committed bundle fixture.

func validateReproducibility(messageData []byte, expected *domain.LayerBundle) *phase {
	p := &phase{name: "Phase 3: Transform Reproducibility"}

	ds, err := domain.ParseRawDataset(domain.RawEvent{Value: messageData})
	if err != nil {
		p.errorf("parse dataset: %v", err)
		return p
	}

	layers, err := domain.ExtractFlowLayers(ds.Counties)
	if err != nil {
		p.errorf("extract layers: %v", err)
		return p
	}
	got := domain.BuildLayerBundle(ds, layers)

	if got.DatasetID != expected.DatasetID {
		p.errorf("dataset_id: expected %q, got %q", expected.DatasetID, got.DatasetID)
	}
	if got.Source != expected.Source {
		p.errorf("source: expected %q, got %q", expected.Source, got.Source)
	}
	if got.CountyCount != expected.CountyCount {
		p.errorf("county_count: expected %d, got %d", expected.CountyCount, got.CountyCount)
	}
	if !got.ProcessedAt.Equal(expected.ProcessedAt) {
		p.errorf("processed_at: expected %s, got %s",
			expected.ProcessedAt.Format(time.RFC3339), got.ProcessedAt.Format(time.RFC3339))
	}
	if !floatEq(got.MaxNet, expected.MaxNet) {
		p.errorf("max_net: expected %g, got %g", expected.MaxNet, got.MaxNet)
	}

	compareArcs(p, got.Arcs, expected.Arcs)
	compareSources(p, got.Sources, expected.Sources)
	compareTargets(p, got.Targets, expected.Targets)

	return p
}

func compareArcs(p *phase, got, expected []domain.Arc) {
	if len(got) != len(expected) {
		p.errorf("arcs: expected %d, got %d", len(expected), len(got))
		return
	}
	for i := range got {
		if !pointEq(got[i].Source, expected[i].Source) || !pointEq(got[i].Target, expected[i].Target) || !floatEq(got[i].Value, expected[i].Value) {
			p.errorf("arc %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

func compareSources(p *phase, got, expected []domain.SourceMarker) {
	if len(got) != len(expected) {
		p.errorf("sources: expected %d, got %d", len(expected), len(got))
		return
	}
	for i := range got {
		if got[i].Name != expected[i].Name || got[i].Direction != expected[i].Direction ||
			!pointEq(got[i].Position, expected[i].Position) || !pointEq(got[i].Target, expected[i].Target) ||
			!floatEq(got[i].Radius, expected[i].Radius) {
			p.errorf("source %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

func compareTargets(p *phase, got, expected []domain.TargetMarker) {
	if len(got) != len(expected) {
		p.errorf("targets: expected %d, got %d", len(expected), len(got))
		return
	}
	for i := range got {
		if got[i].Name != expected[i].Name ||
			!floatEq(got[i].Gain, expected[i].Gain) || !floatEq(got[i].Loss, expected[i].Loss) ||
			!floatEq(got[i].Net, expected[i].Net) ||
			!floatEq(got[i].Position[0], expected[i].Position[0]) ||
			!floatEq(got[i].Position[1], expected[i].Position[1]) ||
			!floatEq(got[i].Position[2], expected[i].Position[2]) {
			p.errorf("target %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

// ── Phase 4: Layer Invariants ──
// Structural checks on the bundle fixture independent of the transform.

func validateLayerInvariants(bundle *domain.LayerBundle, counties []domain.County) *phase {
	p := &phase{name: "Phase 4: Layer Invariants"}

	centroids := make(map[[2]float64]string, len(counties))
	for _, c := range counties {
		centroids[[2]float64(c.Centroid)] = c.Name
	}

	checkArcInvariants(p, bundle, centroids)
	checkMarkerInvariants(p, bundle, counties)

	return p
}

func checkArcInvariants(p *phase, bundle *domain.LayerBundle, centroids map[[2]float64]string) {
	seen := map[[2]string]bool{}
	for i, a := range bundle.Arcs {
		if math.Abs(a.Value) < domain.MinArcMagnitude {
			p.errorf("arc %d: |value| %g below threshold %g", i, math.Abs(a.Value), domain.MinArcMagnitude)
		}

		src, srcOK := centroids[[2]float64(a.Source)]
		dst, dstOK := centroids[[2]float64(a.Target)]
		if !srcOK || !dstOK {
			p.errorf("arc %d: endpoint is not a county centroid", i)
			continue
		}

		key := [2]string{src, dst}
		if src > dst {
			key = [2]string{dst, src}
		}
		if seen[key] {
			p.errorf("arc %d: duplicate county pair %s/%s", i, key[0], key[1])
		}
		seen[key] = true
	}

	if len(bundle.Sources) < len(bundle.Arcs) {
		p.errorf("fewer source markers (%d) than arcs (%d)", len(bundle.Sources), len(bundle.Arcs))
	}
}

func checkMarkerInvariants(p *phase, bundle *domain.LayerBundle, counties []domain.County) {
	for i, s := range bundle.Sources {
		if !floatEq(s.Radius, domain.SourceMarkerRadius) {
			p.errorf("source %d: radius %g, expected %g", i, s.Radius, domain.SourceMarkerRadius)
		}
		if s.Direction != 1 && s.Direction != -1 {
			p.errorf("source %d: direction %d, expected +1 or -1", i, s.Direction)
		}
	}

	if len(bundle.Targets) != len(counties) {
		p.errorf("targets: expected one per county (%d), got %d", len(counties), len(bundle.Targets))
	}
	for i, tm := range bundle.Targets {
		if !floatEq(tm.Position[2], domain.TargetMarkerElevation) {
			p.errorf("target %d (%s): elevation %g, expected %g", i, tm.Name, tm.Position[2], domain.TargetMarkerElevation)
		}
		if !floatEq(tm.Net, tm.Gain+tm.Loss) {
			p.errorf("target %d (%s): net %g != gain %g + loss %g", i, tm.Name, tm.Net, tm.Gain, tm.Loss)
		}
		if i > 0 && math.Abs(tm.Net) > math.Abs(bundle.Targets[i-1].Net)+1e-9 {
			p.errorf("target %d (%s): |net| %g out of descending order", i, tm.Name, math.Abs(tm.Net))
		}
	}

	if len(bundle.Targets) > 0 && !floatEq(bundle.MaxNet, math.Abs(bundle.Targets[0].Net)) {
		p.errorf("max_net %g != |targets[0].net| %g", bundle.MaxNet, math.Abs(bundle.Targets[0].Net))
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func pointEq(a, b [2]float64) bool {
	return floatEq(a[0], b[0]) && floatEq(a[1], b[1])
}
