package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agrolog/groundstation/internal/geo"
	"agrolog/groundstation/internal/telemetry"
)

// flightdump decodes a single route blob from disk and writes the assembled
// GeoJSON document next to it. Useful for inspecting blobs without running
// the server.
func main() {
	var (
		blobPath = flag.String("blob", "", "path to the raw route blob (required)")
		metaPath = flag.String("meta", "", "optional JSON file with record metadata to merge into properties")
		outPath  = flag.String("out", "", "output path (default: <blob>.geojson)")
		name     = flag.String("name", "", "document name (default: derived from the blob filename)")
		indent   = flag.Bool("indent", false, "pretty-print the output")
	)
	flag.Parse()

	if *blobPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	blob, err := os.ReadFile(*blobPath)
	if err != nil {
		fatalf("read blob: %v", err)
	}

	var metadata map[string]any
	if *metaPath != "" {
		raw, err := os.ReadFile(*metaPath)
		if err != nil {
			fatalf("read metadata: %v", err)
		}
		if err := json.Unmarshal(raw, &metadata); err != nil {
			fatalf("parse metadata: %v", err)
		}
	}

	pipeline := telemetry.NewPipeline(nil)
	res, err := pipeline.Decode(blob)
	if err != nil {
		fatalf("decode: %v", err)
	}

	docName := *name
	if docName == "" {
		base := filepath.Base(*blobPath)
		docName = "AG Flight " + strings.TrimSuffix(base, filepath.Ext(base))
	}
	doc := geo.Assemble(docName, metadata, res)

	var out []byte
	if *indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		fatalf("encode geojson: %v", err)
	}

	dest := *outPath
	if dest == "" {
		dest = *blobPath + ".geojson"
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		fatalf("write output: %v", err)
	}

	fmt.Printf("wrote %s: %d accepted, %d rejected, had_telemetry=%v\n",
		dest, res.Diagnostics.Accepted, res.Diagnostics.Rejected, res.Diagnostics.HadTelemetry)
	if len(res.Diagnostics.UnknownFields) > 0 {
		fmt.Printf("unknown fields: %s\n", strings.Join(res.Diagnostics.UnknownFieldKeys(), ", "))
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "flightdump: "+format+"\n", args...)
	os.Exit(1)
}
