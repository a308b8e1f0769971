// Package scene holds the evaluated scene handed to the exporter: objects,
// triangulated meshes, curves and the material to image associations, all
// in the host's Z-up convention.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene errors.
var (
	ErrUnknownFormat = errors.New("unknown scene format")
	ErrInvalidMesh   = errors.New("invalid mesh data")
)

// Kind is the host object type.
type Kind int

const (
	KindOther Kind = iota // cameras, lights, ...: not exported
	KindEmpty
	KindMesh
	KindCurve
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindMesh:
		return "mesh"
	case KindCurve:
		return "curve"
	default:
		return "other"
	}
}

// ParseKind maps a host type name to a Kind. Unknown names map to KindOther.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "empty":
		return KindEmpty
	case "mesh":
		return KindMesh
	case "curve":
		return KindCurve
	default:
		return KindOther
	}
}

// Scene is a fully evaluated host scene.
type Scene struct {
	Path      string // source file; the output name is derived from it
	Generator string // authoring tool, written as a comment
	Objects   []*Object
	Materials []*Material
}

// Object is one host object. Parent names another object ("" for roots).
type Object struct {
	Name     string
	Kind     Kind
	Parent   string
	Local    mgl32.Mat4 // transform relative to the parent
	Material string     // active material name, "" for none
	Mesh     *Mesh      // set for KindMesh
	Curve    *Curve     // set for KindCurve
}

// Triangle references three mesh vertices and the three loops (face
// corners) that carry the per-corner attributes.
type Triangle struct {
	Verts [3]uint32
	Loops [3]uint32
}

// Mesh is an evaluated, triangulated mesh.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3 // per vertex
	Normals   []mgl32.Vec3 // per loop
	UVs       []mgl32.Vec2 // per loop; nil without a UV layer
	Colors    []mgl32.Vec4 // per loop, sRGB; nil without a color layer
	Triangles []Triangle
}

// LoopCount returns the number of loops of the mesh.
func (m *Mesh) LoopCount() int { return len(m.Normals) }

// Validate checks that attribute layers and triangle references agree.
func (m *Mesh) Validate() error {
	loops := m.LoopCount()
	if m.UVs != nil && len(m.UVs) != loops {
		return fmt.Errorf("%w: %s has %d UVs for %d loops", ErrInvalidMesh, m.Name, len(m.UVs), loops)
	}
	if m.Colors != nil && len(m.Colors) != loops {
		return fmt.Errorf("%w: %s has %d colors for %d loops", ErrInvalidMesh, m.Name, len(m.Colors), loops)
	}
	for i, tri := range m.Triangles {
		for c := 0; c < 3; c++ {
			if int(tri.Verts[c]) >= len(m.Positions) {
				return fmt.Errorf("%w: %s triangle %d vertex %d out of range", ErrInvalidMesh, m.Name, i, tri.Verts[c])
			}
			if int(tri.Loops[c]) >= loops {
				return fmt.Errorf("%w: %s triangle %d loop %d out of range", ErrInvalidMesh, m.Name, i, tri.Loops[c])
			}
		}
	}
	return nil
}

// SplineType is the host spline representation.
type SplineType int

const (
	SplinePoly SplineType = iota
	SplineNURBS
	SplineBezier
)

// ParseSplineType maps a host spline type name to a SplineType.
func ParseSplineType(s string) (SplineType, error) {
	switch strings.ToLower(s) {
	case "", "poly":
		return SplinePoly, nil
	case "nurbs":
		return SplineNURBS, nil
	case "bezier":
		return SplineBezier, nil
	}
	return 0, fmt.Errorf("unknown spline type %q", s)
}

// SplinePoint is one control point. Co is homogeneous (x, y, z, weight).
type SplinePoint struct {
	Co     mgl32.Vec4
	Radius float32
	Tilt   float32
}

// Spline is one spline of a curve.
type Spline struct {
	Type   SplineType
	Points []SplinePoint
}

// Curve is an evaluated curve object's data.
type Curve struct {
	Name    string
	Splines []Spline
}

// Material lists the image textures bound in the material's node graph,
// in node order.
type Material struct {
	Name   string
	Images []string
}

// Load reads a scene file, choosing the loader from its extension.
func Load(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}
