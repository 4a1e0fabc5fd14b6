package telemetry

import (
	"fmt"
	"math"
)

// fieldKind distinguishes the numeric encodings the mapper understands.
// Two fields can share a number inside one submessage and still be
// different attributes (field 1 as a double is latitude, field 1 as a
// float is an x velocity), so the kind is part of the lookup key.
type fieldKind uint8

const (
	kindInt fieldKind = iota
	kindDouble
	kindFloat
)

func (k fieldKind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindDouble:
		return "dbl"
	case kindFloat:
		return "flt"
	default:
		return "?"
	}
}

// Attr names a telemetry attribute the format is known to carry.
type Attr uint8

const (
	AttrLatitude Attr = iota
	AttrLongitude
	AttrHeading
	AttrVelocityX
	AttrVelocityY
	AttrSprayRate
	AttrRouteSpacing
	AttrBatteryPct
	AttrTaskSpeed
)

type fieldKey struct {
	Depth int
	Field uint32
	Kind  fieldKind
}

func (k fieldKey) String() string {
	return fmt.Sprintf("d%d:%s_%d", k.Depth, k.Kind, k.Field)
}

// fieldTable maps observed (depth, field number, encoding) triples to
// attributes. The numbering is depth-dependent and was established
// empirically against real route blobs; it is deliberately a flat table so
// new observations extend it in one place.
var fieldTable = map[fieldKey]Attr{
	{Depth: 3, Field: 1, Kind: kindDouble}: AttrLatitude,
	{Depth: 3, Field: 2, Kind: kindDouble}: AttrLongitude,
	{Depth: 3, Field: 3, Kind: kindDouble}: AttrHeading,
	{Depth: 3, Field: 1, Kind: kindFloat}:  AttrVelocityX,
	{Depth: 3, Field: 2, Kind: kindFloat}:  AttrVelocityY,
	{Depth: 3, Field: 3, Kind: kindFloat}:  AttrSprayRate,
	{Depth: 3, Field: 7, Kind: kindInt}:    AttrRouteSpacing,
	{Depth: 2, Field: 39, Kind: kindFloat}: AttrBatteryPct,
	{Depth: 2, Field: 10, Kind: kindInt}:   AttrTaskSpeed,
}

// Sanity bounds applied at collection time. Reinterpreting a nested message
// payload as fixed64/fixed32 bytes occasionally yields astronomic garbage;
// values outside these windows are not real readings.
const (
	maxPlausibleReal   = 1e10
	maxPlausibleVarint = 1e15

	// maxWalkDepth bounds recursion; nothing meaningful has been observed
	// below depth 6 in any blob.
	maxWalkDepth = 6
)

// fieldSeries accumulates ordered observations per attribute, in decode
// order. Decode order is temporal order for per-point series and must be
// preserved, so values only ever append.
type fieldSeries struct {
	values      map[Attr][]float64
	unknown     map[string]int
	unsupported int
}

func newFieldSeries() *fieldSeries {
	return &fieldSeries{
		values:  make(map[Attr][]float64),
		unknown: make(map[string]int),
	}
}

func (s *fieldSeries) observe(depth int, field uint32, kind fieldKind, v float64) {
	key := fieldKey{Depth: depth, Field: field, Kind: kind}
	attr, ok := fieldTable[key]
	if !ok {
		// Diagnostic path for fields not yet reverse-engineered; drone or
		// firmware variants surface here instead of vanishing silently.
		s.unknown[key.String()]++
		return
	}
	s.values[attr] = append(s.values[attr], v)
}

func (s *fieldSeries) series(a Attr) []float64 { return s.values[a] }

// first returns the first observation of a record-level attribute.
func (s *fieldSeries) first(a Attr) (float64, bool) {
	vs := s.values[a]
	if len(vs) == 0 {
		return 0, false
	}
	return vs[0], true
}

// collectFields walks the full node tree of a route blob and buckets every
// recognizable value by depth. Only the outermost level is strict: a nested
// length-delimited payload that fails to decode as a message is a terminal
// byte string, not an error, because the format gives no way to tell the two
// apart up front.
func collectFields(blob []byte) (*fieldSeries, error) {
	s := newFieldSeries()
	nodes, unsupported, err := decodeNodes(blob)
	if err != nil {
		return nil, err
	}
	s.unsupported += unsupported
	walkNodes(nodes, 0, s)
	return s, nil
}

func walkNodes(nodes []RawNode, depth int, s *fieldSeries) {
	if depth > maxWalkDepth {
		return
	}
	for _, n := range nodes {
		switch n.Wire {
		case WireVarint:
			if v := float64(n.Varint); v < maxPlausibleVarint {
				s.observe(depth, n.Field, kindInt, v)
			}
		case WireFixed64:
			v := math.Float64frombits(n.Bits)
			if !math.IsNaN(v) && math.Abs(v) < maxPlausibleReal {
				s.observe(depth, n.Field, kindDouble, v)
			}
		case WireFixed32:
			v := float64(math.Float32frombits(uint32(n.Bits)))
			if !math.IsNaN(v) && math.Abs(v) < maxPlausibleReal {
				s.observe(depth, n.Field, kindFloat, v)
			}
		case WireLengthDelimited:
			sub, unsupported, err := decodeNodes(n.Payload)
			if err != nil {
				continue // terminal byte string
			}
			s.unsupported += unsupported
			walkNodes(sub, depth+1, s)
		}
	}
}
