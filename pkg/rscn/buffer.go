package rscn

import "encoding/binary"

// Buffer is an append-only run of fixed-size elements.
type Buffer struct {
	stride int
	data   []byte
}

// NewIndexBuffer returns a buffer of uint16 indices.
func NewIndexBuffer() Buffer { return Buffer{stride: IndexSize} }

// NewVertexBuffer returns a buffer of packed vertices.
func NewVertexBuffer() Buffer { return Buffer{stride: VertexSize} }

// NewSplineBuffer returns a buffer of packed spline points.
func NewSplineBuffer() Buffer { return Buffer{stride: SplinePointSize} }

// Len returns the number of elements appended so far.
func (b *Buffer) Len() int {
	if b.stride == 0 {
		return 0
	}
	return len(b.data) / b.stride
}

// Size returns the byte size of the buffer.
func (b *Buffer) Size() int { return len(b.data) }

// Stride returns the element size in bytes.
func (b *Buffer) Stride() int { return b.stride }

// Bytes returns the buffer contents. The slice must not be modified.
func (b *Buffer) Bytes() []byte { return b.data }

// AppendIndices appends a run of indices and returns the element offset
// of the first one.
func (b *Buffer) AppendIndices(idx []uint16) int {
	first := b.Len()
	for _, i := range idx {
		b.data = binary.LittleEndian.AppendUint16(b.data, i)
	}
	return first
}

// AppendVertices appends a run of vertices and returns the element
// offset of the first one.
func (b *Buffer) AppendVertices(verts []Vertex) int {
	first := b.Len()
	for _, v := range verts {
		b.data = v.AppendBinary(b.data)
	}
	return first
}

// AppendPoints appends a run of spline points and returns the element
// offset of the first one.
func (b *Buffer) AppendPoints(points []SplinePoint) int {
	first := b.Len()
	for _, p := range points {
		b.data = p.AppendBinary(b.data)
	}
	return first
}
