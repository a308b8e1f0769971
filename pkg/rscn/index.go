package rscn

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Index format errors.
var (
	ErrInvalidFormatTag   = errors.New("invalid rscn index: expected 'rscn' tag")
	ErrUnsupportedVersion = errors.New("unsupported rscn version")
	ErrInvalidHeader      = errors.New("invalid rscn header")
	ErrInvalidDescriptor  = errors.New("invalid rscn descriptor")
	ErrInvalidMagic       = errors.New("invalid rscn binary magic")
	ErrTruncatedBinary    = errors.New("truncated rscn binary")
	ErrCountMismatch      = errors.New("rscn table count mismatch")
	ErrInvalidName        = errors.New("name not representable in rscn index")
)

// Index is a parsed rscn header/index artifact.
type Index struct {
	Version Version

	ImageCount  int
	MeshCount   int
	SplineCount int
	ObjectCount int

	IndexOffset  int
	IndexCount   int
	VertexOffset int
	VertexCount  int
	SplineOffset int
	PointCount   int

	Comments []string
	Images   []string
	Meshes   []MeshEntry
	Splines  []SplineEntry
	Objects  []ObjectEntry
}

// Layout returns the binary placement described by the header.
func (ix *Index) Layout() Layout {
	return Layout{
		IndexOffset:  ix.IndexOffset,
		IndexSize:    ix.IndexCount * IndexSize,
		VertexOffset: ix.VertexOffset,
		VertexSize:   ix.VertexCount * VertexSize,
		SplineOffset: ix.SplineOffset,
		SplineSize:   ix.PointCount * SplinePointSize,
	}
}

// ParseIndexFile parses an index artifact from disk.
func ParseIndexFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseIndex(data)
}

// ParseIndex parses an index artifact.
func ParseIndex(data []byte) (*Index, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 7 {
		return nil, fmt.Errorf("%w: %d lines", ErrInvalidHeader, len(lines))
	}
	if lines[0] != FormatTag {
		return nil, ErrInvalidFormatTag
	}

	ix := &Index{}
	hdr := []struct {
		tag  string
		dec  []bool // true = decimal, false = hex
		dest []*int
	}{
		{"ver", []bool{true, true}, []*int{&ix.Version.Major, &ix.Version.Minor}},
		{"img", []bool{true}, []*int{&ix.ImageCount}},
		{"msh", []bool{true, false, false, false, false}, []*int{&ix.MeshCount, &ix.IndexOffset, &ix.IndexCount, &ix.VertexOffset, &ix.VertexCount}},
		{"spl", []bool{true, false, false}, []*int{&ix.SplineCount, &ix.SplineOffset, &ix.PointCount}},
		{"obj", []bool{true}, []*int{&ix.ObjectCount}},
	}
	for i, h := range hdr {
		fields := strings.Fields(lines[i+1])
		if len(fields) != len(h.dest)+1 || fields[0] != h.tag {
			return nil, fmt.Errorf("%w: line %d %q, want %q", ErrInvalidHeader, i+2, lines[i+1], h.tag)
		}
		for j, dst := range h.dest {
			v, err := parseUint(fields[j+1], h.dec[j])
			if err != nil {
				return nil, fmt.Errorf("%w: %s field %d: %v", ErrInvalidHeader, h.tag, j+1, err)
			}
			*dst = v
		}
	}
	if lines[6] != "" {
		return nil, fmt.Errorf("%w: header not terminated by an empty line", ErrInvalidHeader)
	}
	if ix.Version.Major != VersionMajor {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, ix.Version)
	}

	// Comments may only precede the first section. A section marker must
	// follow an empty line and the sections come in fixed order, so names
	// starting with '#' or '@' read back as data.
	sections := []string{SectionImages, SectionMeshes, SectionSplines, SectionObjects}
	section := ""
	next := 0
	blank := true
	for n, line := range lines[7:] {
		lineNo := n + 8
		switch {
		case line == "":
			blank = true
			continue
		case section == "" && strings.HasPrefix(line, "#"):
			ix.Comments = append(ix.Comments, strings.TrimSpace(line[1:]))
			blank = false
			continue
		case blank && next < len(sections) && line == sections[next]:
			section = line
			next++
			blank = false
			continue
		}
		blank = false

		var err error
		switch section {
		case SectionImages:
			ix.Images = append(ix.Images, line)
		case SectionMeshes:
			err = ix.parseMesh(line)
		case SectionSplines:
			err = ix.parseSpline(line)
		case SectionObjects:
			err = ix.parseObject(line)
		default:
			err = fmt.Errorf("line %q outside of a section", line)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDescriptor, lineNo, err)
		}
	}

	if len(ix.Images) != ix.ImageCount || len(ix.Meshes) != ix.MeshCount ||
		len(ix.Splines) != ix.SplineCount || len(ix.Objects) != ix.ObjectCount {
		return nil, fmt.Errorf("%w: header img=%d msh=%d spl=%d obj=%d, sections %d/%d/%d/%d",
			ErrCountMismatch, ix.ImageCount, ix.MeshCount, ix.SplineCount, ix.ObjectCount,
			len(ix.Images), len(ix.Meshes), len(ix.Splines), len(ix.Objects))
	}
	return ix, nil
}

func (ix *Index) parseMesh(line string) error {
	f := strings.Fields(line)
	if len(f) != 5 {
		return fmt.Errorf("mesh descriptor has %d fields, want 5", len(f))
	}
	m := MeshEntry{Name: f[0]}
	var err error
	if m.IndexCount, err = parseUint(f[1], true); err != nil {
		return err
	}
	if m.VertexCount, err = parseUint(f[2], true); err != nil {
		return err
	}
	if m.FirstIndex, err = parseOffset(f[3], IndexSize); err != nil {
		return err
	}
	if m.FirstVertex, err = parseOffset(f[4], VertexSize); err != nil {
		return err
	}
	ix.Meshes = append(ix.Meshes, m)
	return nil
}

func (ix *Index) parseSpline(line string) error {
	f := strings.Fields(line)
	if len(f) != 3 {
		return fmt.Errorf("spline descriptor has %d fields, want 3", len(f))
	}
	s := SplineEntry{Name: f[0]}
	var err error
	if s.PointCount, err = parseUint(f[1], true); err != nil {
		return err
	}
	if s.FirstPoint, err = parseOffset(f[2], SplinePointSize); err != nil {
		return err
	}
	ix.Splines = append(ix.Splines, s)
	return nil
}

func (ix *Index) parseObject(line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return errors.New("empty object descriptor")
	}
	kind, ok := ParseObjectKind(f[0])
	if !ok {
		return fmt.Errorf("unknown object kind %q", f[0])
	}
	o := ObjectEntry{Kind: kind, Mesh: -1}
	f = f[1:]
	if kind == ObjectMesh {
		if len(f) == 0 {
			return errors.New("missing mesh index")
		}
		v, err := parseRef(f[0])
		if err != nil {
			return err
		}
		o.Mesh = v
		f = f[1:]
	}
	if len(f) != 3+12 {
		return fmt.Errorf("object descriptor has %d trailing fields, want 15", len(f))
	}
	o.Name = f[0]
	var err error
	if o.Parent, err = parseRef(f[1]); err != nil {
		return err
	}
	if o.Image, err = parseRef(f[2]); err != nil {
		return err
	}
	var vals [12]float32
	for i, tok := range f[3:] {
		v, err := strconv.ParseFloat(strings.Trim(tok, "[]"), 32)
		if err != nil {
			return err
		}
		vals[i] = float32(v)
	}
	copy(o.Position[:], vals[:3])
	copy(o.Linear[:], vals[3:])
	ix.Objects = append(ix.Objects, o)
	return nil
}

// Verify checks a binary artifact against the index: magic, exact total
// size and that every mesh and spline run lies inside its buffer.
func (ix *Index) Verify(bin []byte) error {
	if len(bin) < len(Magic) || string(bin[:len(Magic)]) != Magic {
		return ErrInvalidMagic
	}
	l := ix.Layout()
	if l.IndexOffset != len(Magic) || l.VertexOffset != l.IndexOffset+l.IndexSize ||
		l.SplineOffset != l.VertexOffset+l.VertexSize {
		return fmt.Errorf("%w: buffers are not contiguous", ErrInvalidHeader)
	}
	if len(bin) < l.End() {
		return fmt.Errorf("%w: %d bytes, header describes %d", ErrTruncatedBinary, len(bin), l.End())
	}
	if len(bin) > l.End() {
		return fmt.Errorf("%w: %d trailing bytes", ErrCountMismatch, len(bin)-l.End())
	}
	for i := range ix.Meshes {
		if err := ix.checkMesh(i); err != nil {
			return err
		}
	}
	for i := range ix.Splines {
		if err := ix.checkSpline(i); err != nil {
			return err
		}
	}
	return nil
}

// within reports whether the run [first, first+count) lies inside [0, total).
func within(first, count, total int) bool {
	return first >= 0 && count >= 0 && first <= total && count <= total-first
}

func (ix *Index) checkMesh(i int) error {
	if i < 0 || i >= len(ix.Meshes) {
		return fmt.Errorf("mesh %d out of range", i)
	}
	m := ix.Meshes[i]
	if !within(m.FirstIndex, m.IndexCount, ix.IndexCount) || !within(m.FirstVertex, m.VertexCount, ix.VertexCount) {
		return fmt.Errorf("%w: mesh %s exceeds its buffers", ErrCountMismatch, m.Name)
	}
	return nil
}

func (ix *Index) checkSpline(i int) error {
	if i < 0 || i >= len(ix.Splines) {
		return fmt.Errorf("spline %d out of range", i)
	}
	s := ix.Splines[i]
	if !within(s.FirstPoint, s.PointCount, ix.PointCount) {
		return fmt.Errorf("%w: spline %s exceeds the spline buffer", ErrCountMismatch, s.Name)
	}
	return nil
}

// ReadMesh decodes the vertices and indices of mesh i from a binary artifact.
func (ix *Index) ReadMesh(bin []byte, i int) ([]Vertex, []uint16, error) {
	if err := ix.checkMesh(i); err != nil {
		return nil, nil, err
	}
	m := ix.Meshes[i]
	l := ix.Layout()
	if l.IndexOffset < 0 || l.VertexOffset < 0 || l.VertexOffset+l.VertexSize > len(bin) || l.IndexOffset+l.IndexSize > len(bin) {
		return nil, nil, ErrTruncatedBinary
	}

	istart := l.IndexOffset + m.FirstIndex*IndexSize
	vstart := l.VertexOffset + m.FirstVertex*VertexSize

	indices := make([]uint16, m.IndexCount)
	for j := range indices {
		off := istart + j*IndexSize
		indices[j] = uint16(bin[off]) | uint16(bin[off+1])<<8
	}
	verts := make([]Vertex, m.VertexCount)
	for j := range verts {
		verts[j] = DecodeVertex(bin[vstart+j*VertexSize:])
	}
	return verts, indices, nil
}

// ReadSpline decodes the points of spline i from a binary artifact.
func (ix *Index) ReadSpline(bin []byte, i int) ([]SplinePoint, error) {
	if err := ix.checkSpline(i); err != nil {
		return nil, err
	}
	s := ix.Splines[i]
	l := ix.Layout()
	if l.SplineOffset < 0 || l.SplineOffset+l.SplineSize > len(bin) {
		return nil, ErrTruncatedBinary
	}
	start := l.SplineOffset + s.FirstPoint*SplinePointSize
	points := make([]SplinePoint, s.PointCount)
	for j := range points {
		points[j] = DecodeSplinePoint(bin[start+j*SplinePointSize:])
	}
	return points, nil
}

// maxField bounds header and descriptor values so offset arithmetic
// cannot overflow.
const maxField = 1 << 40

// parseUint parses a non-negative decimal or hex field.
func parseUint(s string, decimal bool) (int, error) {
	base := 16
	if decimal {
		base = 10
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	if v > maxField {
		return 0, fmt.Errorf("value %s out of range", s)
	}
	return int(v), nil
}

// parseOffset parses a hex byte offset and returns it in elements of size stride.
func parseOffset(s string, stride int) (int, error) {
	v, err := parseUint(s, false)
	if err != nil {
		return 0, err
	}
	if v%stride != 0 {
		return 0, fmt.Errorf("byte offset %s is not a multiple of %d", s, stride)
	}
	return v / stride, nil
}

// parseRef parses a table reference: an index or -1.
func parseRef(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < -1 || v > maxField {
		return 0, fmt.Errorf("reference %s out of range", s)
	}
	return v, nil
}
