package telemetry

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Diagnostics describes what a decode saw, for observability by the caller.
// A record with zero accepted samples is a legitimate outcome (metadata-only
// record), reported through HadTelemetry rather than an error.
type Diagnostics struct {
	Accepted         int            `json:"accepted_count"`
	Rejected         int            `json:"rejected_count"`
	HadTelemetry     bool           `json:"had_telemetry"`
	UnsupportedNodes int            `json:"unsupported_nodes,omitempty"`
	UnknownFields    map[string]int `json:"unknown_fields,omitempty"`
}

// RecordTelemetry holds the record-level attributes decoded alongside the
// per-point series.
type RecordTelemetry struct {
	BatteryPct   *float64 `json:"battery_pct,omitempty"`
	TaskSpeed    *int64   `json:"task_speed,omitempty"`
	RouteSpacing *int64   `json:"route_spacing,omitempty"`
}

// Result is the full outcome of decoding one route blob.
type Result struct {
	Samples     []Sample
	Stats       Stats
	Bounds      *Bounds
	Record      RecordTelemetry
	Diagnostics Diagnostics
}

// Pipeline decodes route blobs into accepted samples, statistics and
// diagnostics. It is pure and stateless across invocations: no shared
// mutable state, safe for concurrent use from any number of goroutines.
type Pipeline struct {
	region *BoundingBox
}

// NewPipeline builds a pipeline. region is optional; when nil only WGS84
// validity is enforced.
func NewPipeline(region *BoundingBox) *Pipeline {
	return &Pipeline{region: region}
}

// Decode runs the blob through the wire walk, field mapping, sample
// synchronization and aggregation. It fails only on ErrMalformedWireFormat;
// a structurally sound blob with no valid points returns a Result with
// HadTelemetry=false. No partial Result is ever returned on error.
func (p *Pipeline) Decode(blob []byte) (*Result, error) {
	series, err := collectFields(blob)
	if err != nil {
		return nil, err
	}

	samples, rejected := synchronize(series, p.region)

	res := &Result{
		Samples: samples,
		Stats:   aggregate(samples),
		Bounds:  computeBounds(samples),
		Diagnostics: Diagnostics{
			Accepted:         len(samples),
			Rejected:         rejected,
			HadTelemetry:     len(samples) > 0,
			UnsupportedNodes: series.unsupported,
		},
	}
	if len(series.unknown) > 0 {
		res.Diagnostics.UnknownFields = series.unknown
	}

	if v, ok := series.first(AttrBatteryPct); ok {
		res.Record.BatteryPct = &v
	}
	if v, ok := series.first(AttrTaskSpeed); ok {
		iv := int64(v)
		res.Record.TaskSpeed = &iv
	}
	if v, ok := series.first(AttrRouteSpacing); ok {
		iv := int64(v)
		res.Record.RouteSpacing = &iv
	}

	return res, nil
}

// UnknownFieldKeys returns the unrecognized (depth, field, encoding) keys in
// a stable order, for logging.
func (d Diagnostics) UnknownFieldKeys() []string {
	keys := make([]string, 0, len(d.UnknownFields))
	for k := range d.UnknownFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BatchItem pairs a blob with its per-record decode outcome. One corrupt
// blob never aborts the batch.
type BatchItem struct {
	ID     string
	Blob   []byte
	Result *Result
	Err    error
}

// DecodeAll decodes a batch concurrently. Decoding parallelizes freely once
// blobs are in hand; only retrieval is serialized, upstream of this call.
func (p *Pipeline) DecodeAll(ctx context.Context, items []BatchItem, parallelism int) []BatchItem {
	if parallelism < 1 {
		parallelism = 1
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	out := make([]BatchItem, len(items))
	copy(out, items)
	for i := range out {
		i := i
		g.Go(func() error {
			out[i].Result, out[i].Err = p.Decode(out[i].Blob)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, per-record failures stay in items
	return out
}
