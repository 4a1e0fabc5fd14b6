package telemetry

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// test-side encoders for building wire buffers by hand

func appendVarint(b []byte, v uint64) []byte {
	return binary.AppendUvarint(b, v)
}

func appendTag(b []byte, field uint32, wire WireType) []byte {
	return appendVarint(b, uint64(field)<<3|uint64(wire))
}

func appendInt(b []byte, field uint32, v uint64) []byte {
	b = appendTag(b, field, WireVarint)
	return appendVarint(b, v)
}

func appendDouble(b []byte, field uint32, v float64) []byte {
	b = appendTag(b, field, WireFixed64)
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func appendFloat(b []byte, field uint32, v float32) []byte {
	b = appendTag(b, field, WireFixed32)
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

func appendBytes(b []byte, field uint32, payload []byte) []byte {
	b = appendTag(b, field, WireLengthDelimited)
	b = appendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

func TestDecodeNodesAllWireTypes(t *testing.T) {
	var buf []byte
	buf = appendInt(buf, 10, 1500)
	buf = appendDouble(buf, 1, -25.5)
	buf = appendFloat(buf, 3, 2.25)
	buf = appendBytes(buf, 4, []byte("payload"))

	nodes, err := DecodeNodes(buf)
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	assert.Equal(t, uint32(10), nodes[0].Field)
	assert.Equal(t, WireVarint, nodes[0].Wire)
	assert.Equal(t, uint64(1500), nodes[0].Varint)

	assert.Equal(t, uint32(1), nodes[1].Field)
	assert.Equal(t, WireFixed64, nodes[1].Wire)
	assert.Equal(t, -25.5, math.Float64frombits(nodes[1].Bits))

	assert.Equal(t, uint32(3), nodes[2].Field)
	assert.Equal(t, WireFixed32, nodes[2].Wire)
	assert.Equal(t, float32(2.25), math.Float32frombits(uint32(nodes[2].Bits)))

	assert.Equal(t, uint32(4), nodes[3].Field)
	assert.Equal(t, WireLengthDelimited, nodes[3].Wire)
	assert.True(t, bytes.Equal([]byte("payload"), nodes[3].Payload))
}

func TestDecodeNodesEmptyBuffer(t *testing.T) {
	nodes, err := DecodeNodes(nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestDecodeNodesDeterministic(t *testing.T) {
	var buf []byte
	buf = appendInt(buf, 2, 42)
	buf = appendBytes(buf, 5, appendDouble(nil, 1, 7.0))

	first, err := DecodeNodes(buf)
	require.NoError(t, err)
	second, err := DecodeNodes(buf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeNodesTruncatedVarint(t *testing.T) {
	// continuation bit set, then the buffer ends
	_, err := DecodeNodes([]byte{0x08, 0x80})
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesOverlongVarint(t *testing.T) {
	buf := []byte{0x08}
	for i := 0; i < 11; i++ {
		buf = append(buf, 0x80)
	}
	buf = append(buf, 0x01)
	_, err := DecodeNodes(buf)
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesTruncatedFixed64(t *testing.T) {
	buf := appendTag(nil, 1, WireFixed64)
	buf = append(buf, 0x01, 0x02, 0x03) // only 3 of 8 bytes
	_, err := DecodeNodes(buf)
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesTruncatedFixed32(t *testing.T) {
	buf := appendTag(nil, 1, WireFixed32)
	buf = append(buf, 0x01)
	_, err := DecodeNodes(buf)
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesLengthPrefixOverrun(t *testing.T) {
	buf := appendTag(nil, 4, WireLengthDelimited)
	buf = appendVarint(buf, 100) // claims 100 bytes, none follow
	_, err := DecodeNodes(buf)
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesMissingTag(t *testing.T) {
	// a lone continuation byte cannot even form a tag
	_, err := DecodeNodes([]byte{0x80})
	require.ErrorIs(t, err, ErrMalformedWireFormat)
}

func TestDecodeNodesUnsupportedWireTypeStopsWalk(t *testing.T) {
	var buf []byte
	buf = appendInt(buf, 1, 7)
	buf = appendTag(buf, 2, WireType(3)) // start-group, no length framing
	buf = appendInt(buf, 3, 9)           // unreachable

	nodes, unsupported, err := decodeNodes(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, unsupported)
	require.Len(t, nodes, 2)
	assert.Equal(t, uint64(7), nodes[0].Varint)
	assert.Equal(t, uint32(2), nodes[1].Field)
	assert.Equal(t, WireType(3), nodes[1].Wire)
}

func TestReadUvarintMultiByte(t *testing.T) {
	v, next, err := readUvarint([]byte{0xAC, 0x02}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 2, next)
}
