// Package rscn implements the raven scene (rscn) asset container: the
// packed vertex record, attribute quantizers, vertex deduplication and the
// binary/index writers and readers.
package rscn

import (
	"encoding/binary"
	"math"
)

// Element sizes in the binary artifact.
const (
	IndexSize       = 2  // little-endian uint16
	VertexSize      = 26 // pos 3xf32, uv 2xf32, normal 3xi8, color 3xu8
	SplinePointSize = 20 // pos 3xf32, radius f32, tilt f32
)

// MaxMeshVertices is the largest distinct vertex count a mesh can have
// while remaining addressable by 16-bit indices.
const MaxMeshVertices = 1 << 16

// Vertex is the fixed-layout vertex record stored in the vertex buffer.
// Two vertices are the same record iff their encodings are byte-equal.
type Vertex struct {
	Pos    [3]float32
	UV     [2]float32
	Normal [3]int8  // quantized, see QuantizeNormal
	Color  [3]uint8 // linear, see QuantizeColor
}

// VertexKey is the packed encoding of a Vertex, used as its identity.
type VertexKey [VertexSize]byte

// Key returns the packed little-endian encoding of v.
func (v Vertex) Key() VertexKey {
	var k VertexKey
	v.put(k[:])
	return k
}

// AppendBinary appends the packed encoding of v to b.
func (v Vertex) AppendBinary(b []byte) []byte {
	k := v.Key()
	return append(b, k[:]...)
}

func (v Vertex) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], math.Float32bits(v.Pos[0]))
	le.PutUint32(b[4:], math.Float32bits(v.Pos[1]))
	le.PutUint32(b[8:], math.Float32bits(v.Pos[2]))
	le.PutUint32(b[12:], math.Float32bits(v.UV[0]))
	le.PutUint32(b[16:], math.Float32bits(v.UV[1]))
	b[20] = byte(v.Normal[0])
	b[21] = byte(v.Normal[1])
	b[22] = byte(v.Normal[2])
	b[23] = v.Color[0]
	b[24] = v.Color[1]
	b[25] = v.Color[2]
}

// DecodeVertex decodes one packed vertex. b must hold at least VertexSize bytes.
func DecodeVertex(b []byte) Vertex {
	le := binary.LittleEndian
	return Vertex{
		Pos: [3]float32{
			math.Float32frombits(le.Uint32(b[0:])),
			math.Float32frombits(le.Uint32(b[4:])),
			math.Float32frombits(le.Uint32(b[8:])),
		},
		UV: [2]float32{
			math.Float32frombits(le.Uint32(b[12:])),
			math.Float32frombits(le.Uint32(b[16:])),
		},
		Normal: [3]int8{int8(b[20]), int8(b[21]), int8(b[22])},
		Color:  [3]uint8{b[23], b[24], b[25]},
	}
}

// SplinePoint is one control point of a spline.
type SplinePoint struct {
	Pos    [3]float32
	Radius float32
	Tilt   float32
}

// AppendBinary appends the packed encoding of p to b.
func (p SplinePoint) AppendBinary(b []byte) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, math.Float32bits(p.Pos[0]))
	b = le.AppendUint32(b, math.Float32bits(p.Pos[1]))
	b = le.AppendUint32(b, math.Float32bits(p.Pos[2]))
	b = le.AppendUint32(b, math.Float32bits(p.Radius))
	return le.AppendUint32(b, math.Float32bits(p.Tilt))
}

// DecodeSplinePoint decodes one packed spline point.
func DecodeSplinePoint(b []byte) SplinePoint {
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	return SplinePoint{
		Pos:    [3]float32{f(0), f(4), f(8)},
		Radius: f(12),
		Tilt:   f(16),
	}
}
