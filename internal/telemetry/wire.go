package telemetry

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WireType is the low three bits of a field tag.
type WireType uint8

const (
	WireVarint          WireType = 0
	WireFixed64         WireType = 1
	WireLengthDelimited WireType = 2
	WireFixed32         WireType = 5
)

func (w WireType) String() string {
	switch w {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireLengthDelimited:
		return "length_delimited"
	case WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wire_type(%d)", uint8(w))
	}
}

// ErrMalformedWireFormat is returned when a buffer is structurally broken:
// truncated tag or value, an over-long varint, or a length prefix that runs
// past the end of the buffer.
var ErrMalformedWireFormat = errors.New("malformed wire format")

// maxVarintBytes bounds varint consumption on corrupt input. A 64-bit value
// never needs more than 10 continuation bytes.
const maxVarintBytes = 10

// RawNode is one decoded (field, wire type, value) triple. Exactly one of
// Varint, Bits or Payload is meaningful, selected by Wire. Payload aliases
// the input buffer and is only valid while the buffer is.
type RawNode struct {
	Field   uint32
	Wire    WireType
	Varint  uint64 // WireVarint
	Bits    uint64 // WireFixed64 / WireFixed32 (raw bits, low 32 used for fixed32)
	Payload []byte // WireLengthDelimited
}

// readUvarint decodes a varint at pos. Returns the value and the offset of
// the first byte after it.
func readUvarint(buf []byte, pos int) (uint64, int, error) {
	var val uint64
	var shift uint
	for i := 0; ; i++ {
		if i == maxVarintBytes {
			return 0, 0, fmt.Errorf("%w: varint exceeds %d bytes at offset %d", ErrMalformedWireFormat, maxVarintBytes, pos)
		}
		if pos+i >= len(buf) {
			return 0, 0, fmt.Errorf("%w: buffer ends mid-varint at offset %d", ErrMalformedWireFormat, pos)
		}
		b := buf[pos+i]
		val |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return val, pos + i + 1, nil
		}
		shift += 7
	}
}

// DecodeNodes walks one level of a length-delimited buffer into RawNodes.
// Unknown field numbers are kept; a wire type outside the handled set stops
// the walk (group encodings carry no length, so the remainder of this buffer
// cannot be framed) and is reported through the returned node with its tag
// preserved, leaving the caller to count it. Structural breakage returns
// ErrMalformedWireFormat.
//
// Decoding is pure: the same bytes always yield the same node sequence.
func DecodeNodes(buf []byte) ([]RawNode, error) {
	nodes, _, err := decodeNodes(buf)
	return nodes, err
}

// decodeNodes additionally reports how many nodes carried an unsupported
// wire type (at most one per call, since the walk cannot continue past it).
func decodeNodes(buf []byte) ([]RawNode, int, error) {
	var nodes []RawNode
	pos := 0
	for pos < len(buf) {
		tag, next, err := readUvarint(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		pos = next

		node := RawNode{
			Field: uint32(tag >> 3),
			Wire:  WireType(tag & 0x7),
		}

		switch node.Wire {
		case WireVarint:
			v, next, err := readUvarint(buf, pos)
			if err != nil {
				return nil, 0, err
			}
			node.Varint = v
			pos = next

		case WireFixed64:
			if pos+8 > len(buf) {
				return nil, 0, fmt.Errorf("%w: buffer ends mid-fixed64 at offset %d", ErrMalformedWireFormat, pos)
			}
			node.Bits = binary.LittleEndian.Uint64(buf[pos : pos+8])
			pos += 8

		case WireFixed32:
			if pos+4 > len(buf) {
				return nil, 0, fmt.Errorf("%w: buffer ends mid-fixed32 at offset %d", ErrMalformedWireFormat, pos)
			}
			node.Bits = uint64(binary.LittleEndian.Uint32(buf[pos : pos+4]))
			pos += 4

		case WireLengthDelimited:
			length, next, err := readUvarint(buf, pos)
			if err != nil {
				return nil, 0, err
			}
			pos = next
			if length > uint64(len(buf)-pos) {
				return nil, 0, fmt.Errorf("%w: length prefix %d exceeds %d remaining bytes", ErrMalformedWireFormat, length, len(buf)-pos)
			}
			node.Payload = buf[pos : pos+int(length)]
			pos += int(length)

		default:
			// Groups and reserved wire types: keep the tag as an opaque node
			// and stop, the rest of the buffer has no recoverable framing.
			return append(nodes, node), 1, nil
		}

		nodes = append(nodes, node)
	}
	return nodes, 0, nil
}
