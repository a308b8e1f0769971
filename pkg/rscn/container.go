package rscn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Magic starts every binary artifact.
const Magic = "rscn\n"

// FormatTag is the first line of the index artifact.
const FormatTag = "rscn"

// Current format version.
const (
	VersionMajor = 0
	VersionMinor = 1
)

// Section markers of the index artifact, in file order.
const (
	SectionImages  = "@imgs"
	SectionMeshes  = "@mshs"
	SectionSplines = "@spls"
	SectionObjects = "@objs"
)

// Version is the rscn format version.
type Version struct {
	Major int
	Minor int
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MeshEntry is one deduplicated triangle mesh.
// FirstIndex and FirstVertex are element offsets into the global index and
// vertex buffers; the descriptor carries them as byte offsets.
type MeshEntry struct {
	Name        string
	Vertices    []Vertex
	Indices     []uint16
	IndexCount  int
	VertexCount int
	FirstIndex  int
	FirstVertex int
}

// IndexByteOffset returns the byte offset of the mesh indices inside the
// index buffer.
func (m *MeshEntry) IndexByteOffset() int { return m.FirstIndex * IndexSize }

// VertexByteOffset returns the byte offset of the mesh vertices inside the
// vertex buffer.
func (m *MeshEntry) VertexByteOffset() int { return m.FirstVertex * VertexSize }

// Descriptor returns the @mshs line of the mesh.
func (m *MeshEntry) Descriptor() string {
	return fmt.Sprintf("%s %d %d %X %X", m.Name, m.IndexCount, m.VertexCount, m.IndexByteOffset(), m.VertexByteOffset())
}

// SplineEntry is one exported spline.
type SplineEntry struct {
	Name       string
	Points     []SplinePoint
	PointCount int
	FirstPoint int
}

// ByteOffset returns the byte offset of the points inside the spline buffer.
func (s *SplineEntry) ByteOffset() int { return s.FirstPoint * SplinePointSize }

// Descriptor returns the @spls line of the spline.
func (s *SplineEntry) Descriptor() string {
	return fmt.Sprintf("%s %d %X", s.Name, s.PointCount, s.ByteOffset())
}

// ObjectKind tags an object entry.
type ObjectKind int

const (
	ObjectEmpty ObjectKind = iota
	ObjectMesh
	ObjectSpline
)

// Tag returns the descriptor tag of the kind.
func (k ObjectKind) Tag() string {
	switch k {
	case ObjectEmpty:
		return "emp"
	case ObjectMesh:
		return "msh"
	case ObjectSpline:
		return "spl"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseObjectKind returns the kind for a descriptor tag.
func ParseObjectKind(tag string) (ObjectKind, bool) {
	switch tag {
	case "emp":
		return ObjectEmpty, true
	case "msh":
		return ObjectMesh, true
	case "spl":
		return ObjectSpline, true
	}
	return 0, false
}

// ObjectEntry is one node of the object forest, in target space.
// Mesh, Parent and Image are -1 when absent.
type ObjectEntry struct {
	Name     string
	Kind     ObjectKind
	Mesh     int
	Parent   int
	Image    int
	Position mgl32.Vec3
	Linear   mgl32.Mat3
}

// Descriptor returns the @objs line of the object. The matrix is written
// column by column.
func (o *ObjectEntry) Descriptor() string {
	b := make([]byte, 0, 160)
	b = append(b, o.Kind.Tag()...)
	b = append(b, ' ')
	if o.Kind == ObjectMesh {
		b = strconv.AppendInt(b, int64(o.Mesh), 10)
		b = append(b, ' ')
	}
	b = append(b, o.Name...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(o.Parent), 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(o.Image), 10)
	b = append(b, " ["...)
	b = appendFloats(b, o.Position[:])
	b = append(b, "] ["...)
	b = appendFloats(b, o.Linear[:])
	return string(append(b, ']'))
}

func appendFloats(b []byte, fs []float32) []byte {
	for i, f := range fs {
		if i > 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendFloat(b, float64(f), 'g', 6, 64)
	}
	return b
}

// Layout holds the byte offsets of the buffers inside the binary artifact.
type Layout struct {
	IndexOffset  int
	IndexSize    int
	VertexOffset int
	VertexSize   int
	SplineOffset int
	SplineSize   int
}

// End returns the total size of the binary artifact.
func (l Layout) End() int { return l.SplineOffset + l.SplineSize }

// Container accumulates the tables and buffers of one export.
type Container struct {
	Version   Version
	Generator string // optional comment written after the header
	Images    []string
	Meshes    []MeshEntry
	Splines   []SplineEntry
	Objects   []ObjectEntry

	Indices  Buffer
	Vertices Buffer
	Points   Buffer
}

// NewContainer returns an empty container at the current format version.
func NewContainer() *Container {
	return &Container{
		Version:  Version{Major: VersionMajor, Minor: VersionMinor},
		Indices:  NewIndexBuffer(),
		Vertices: NewVertexBuffer(),
		Points:   NewSplineBuffer(),
	}
}

// AddImage appends an image basename and returns its index.
func (c *Container) AddImage(name string) int {
	c.Images = append(c.Images, name)
	return len(c.Images) - 1
}

// AddMesh appends the mesh data to the index and vertex buffers, fills in
// its offsets and counts, and returns its table index.
func (c *Container) AddMesh(m MeshEntry) int {
	m.IndexCount = len(m.Indices)
	m.VertexCount = len(m.Vertices)
	m.FirstIndex = c.Indices.AppendIndices(m.Indices)
	m.FirstVertex = c.Vertices.AppendVertices(m.Vertices)
	c.Meshes = append(c.Meshes, m)
	return len(c.Meshes) - 1
}

// AddSpline appends the spline points to the spline buffer and returns
// its table index.
func (c *Container) AddSpline(s SplineEntry) int {
	s.PointCount = len(s.Points)
	s.FirstPoint = c.Points.AppendPoints(s.Points)
	c.Splines = append(c.Splines, s)
	return len(c.Splines) - 1
}

// AddObject appends an object entry and returns its index.
func (c *Container) AddObject(o ObjectEntry) int {
	c.Objects = append(c.Objects, o)
	return len(c.Objects) - 1
}

// Layout computes the buffer placement: magic, indices, vertices, splines.
func (c *Container) Layout() Layout {
	l := Layout{
		IndexOffset: len(Magic),
		IndexSize:   c.Indices.Size(),
		VertexSize:  c.Vertices.Size(),
		SplineSize:  c.Points.Size(),
	}
	l.VertexOffset = l.IndexOffset + l.IndexSize
	l.SplineOffset = l.VertexOffset + l.VertexSize
	return l
}

// WriteBinary writes the binary artifact. Each buffer is written exactly
// once at the offset reported by Layout.
func (c *Container) WriteBinary(w io.Writer) error {
	for _, part := range [][]byte{[]byte(Magic), c.Indices.Bytes(), c.Vertices.Bytes(), c.Points.Bytes()} {
		if _, err := w.Write(part); err != nil {
			return fmt.Errorf("writing binary: %w", err)
		}
	}
	return nil
}

// checkText reports the first name that cannot appear in the index: it must
// be printable ASCII, non-empty and, except for the generator comment,
// free of spaces.
func (c *Container) checkText() error {
	check := func(what, s string, spaces bool) error {
		if s == "" && what != "generator" {
			return fmt.Errorf("%w: empty %s name", ErrInvalidName, what)
		}
		for i := 0; i < len(s); i++ {
			b := s[i]
			if b < 0x20 || b > 0x7E || (b == ' ' && !spaces) {
				return fmt.Errorf("%w: %s %q has byte %#x at %d", ErrInvalidName, what, s, b, i)
			}
		}
		return nil
	}
	if err := check("generator", c.Generator, true); err != nil {
		return err
	}
	for _, img := range c.Images {
		if err := check("image", img, true); err != nil {
			return err
		}
	}
	for i := range c.Meshes {
		if err := check("mesh", c.Meshes[i].Name, false); err != nil {
			return err
		}
	}
	for i := range c.Splines {
		if err := check("spline", c.Splines[i].Name, false); err != nil {
			return err
		}
	}
	for i := range c.Objects {
		if err := check("object", c.Objects[i].Name, false); err != nil {
			return err
		}
	}
	return nil
}

// WriteText writes the ASCII header and index. Nothing is written when a
// name is not printable ASCII.
func (c *Container) WriteText(w io.Writer) error {
	if err := c.checkText(); err != nil {
		return err
	}
	l := c.Layout()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", FormatTag)
	fmt.Fprintf(bw, "ver %d %d\n", c.Version.Major, c.Version.Minor)
	fmt.Fprintf(bw, "img %d\n", len(c.Images))
	fmt.Fprintf(bw, "msh %d %X %X %X %X\n", len(c.Meshes), l.IndexOffset, c.Indices.Len(), l.VertexOffset, c.Vertices.Len())
	fmt.Fprintf(bw, "spl %d %X %X\n", len(c.Splines), l.SplineOffset, c.Points.Len())
	fmt.Fprintf(bw, "obj %d\n", len(c.Objects))
	// The header ends with an empty line; comments may only follow it.
	bw.WriteString("\n")

	if c.Generator != "" {
		fmt.Fprintf(bw, "# %s\n", c.Generator)
	}

	bw.WriteString("\n" + SectionImages + "\n")
	for _, img := range c.Images {
		bw.WriteString(img + "\n")
	}
	bw.WriteString("\n" + SectionMeshes + "\n")
	for i := range c.Meshes {
		bw.WriteString(c.Meshes[i].Descriptor() + "\n")
	}
	bw.WriteString("\n" + SectionSplines + "\n")
	for i := range c.Splines {
		bw.WriteString(c.Splines[i].Descriptor() + "\n")
	}
	bw.WriteString("\n" + SectionObjects + "\n")
	for i := range c.Objects {
		bw.WriteString(c.Objects[i].Descriptor() + "\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}
