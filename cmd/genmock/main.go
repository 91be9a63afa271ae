// Command genmock builds mock data fixtures from a county flow GeoJSON file.
// It uses the actual ETL domain package so the generated layer bundle matches
// real pipeline behavior, and prints the aggregate numbers test assertions
// are written against.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -geojson data/mock/county_flows.geojson \
//	  -message-out data/mock/county_flows_message.json \
//	  -bundle-out data/mock/county_flows_bundle.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

const mockDatasetID = "county-flows-2403"

// frozenClock pins ProcessedAt so regenerated fixtures stay byte-identical.
var frozenClock = time.Date(2024, time.March, 12, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	geojsonPath := flag.String("geojson", "", "input county flow GeoJSON file")
	messageOut := flag.String("message-out", "", "output path for the raw source-topic message fixture")
	bundleOut := flag.String("bundle-out", "", "output path for the expected layer bundle fixture")
	flag.Parse()

	if *geojsonPath == "" || *messageOut == "" || *bundleOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -geojson, -message-out, -bundle-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(frozenClock))
	defer domain.SetClock(nil)

	collection, err := os.ReadFile(*geojsonPath)
	if err != nil {
		return fmt.Errorf("read geojson: %w", err)
	}

	// Assemble the source-topic message the same way a producer would.
	message, err := json.Marshal(map[string]json.RawMessage{
		"dataset_id": json.RawMessage(fmt.Sprintf("%q", mockDatasetID)),
		"collection": collection,
	})
	if err != nil {
		return fmt.Errorf("assemble message: %w", err)
	}

	// Run the actual ETL transformation.
	ds, err := domain.ParseRawDataset(domain.RawEvent{Value: message})
	if err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	layers, err := domain.ExtractFlowLayers(ds.Counties)
	if err != nil {
		return fmt.Errorf("extract layers: %w", err)
	}

	bundle := domain.BuildLayerBundle(ds, layers)

	if err := writeRaw(*messageOut, message); err != nil {
		return fmt.Errorf("writing message fixture: %w", err)
	}
	log.Printf("wrote message fixture: %s", *messageOut)

	if err := writeJSON(*bundleOut, bundle); err != nil {
		return fmt.Errorf("writing bundle fixture: %w", err)
	}
	log.Printf("wrote bundle fixture: %s", *bundleOut)

	printStats(bundle)
	return nil
}

func writeRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(bundle domain.LayerBundle) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Counties: %d\n", bundle.CountyCount)
	fmt.Printf("Arcs: %d\n", len(bundle.Arcs))
	fmt.Printf("Sources: %d\n", len(bundle.Sources))
	fmt.Printf("Targets: %d\n", len(bundle.Targets))
	fmt.Printf("MaxNet: %g\n", bundle.MaxNet)

	fmt.Println("\nArcs in emission order:")
	for i, a := range bundle.Arcs {
		fmt.Printf("  [%d] (%g, %g) -> (%g, %g) value=%g\n",
			i, a.Source[0], a.Source[1], a.Target[0], a.Target[1], a.Value)
	}

	fmt.Println("\nSource markers in emission order:")
	for i, s := range bundle.Sources {
		fmt.Printf("  [%d] %s direction=%+d\n", i, s.Name, s.Direction)
	}

	fmt.Println("\nTargets by descending |net|:")
	for _, tm := range bundle.Targets {
		fmt.Printf("  %-16s gain=%g loss=%g net=%g |net|=%g\n",
			tm.Name, tm.Gain, tm.Loss, tm.Net, math.Abs(tm.Net))
	}
}
