package scene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// yamlScene is the scene dump written by the host-side dump script.
type yamlScene struct {
	Generator string         `yaml:"generator"`
	Materials []yamlMaterial `yaml:"materials"`
	Meshes    []yamlMesh     `yaml:"meshes"`
	Curves    []yamlCurve    `yaml:"curves"`
	Objects   []yamlObject   `yaml:"objects"`
}

type yamlMaterial struct {
	Name   string   `yaml:"name"`
	Images []string `yaml:"images"`
}

type yamlMesh struct {
	Name      string         `yaml:"name"`
	Positions [][]float32    `yaml:"positions"`
	Normals   [][]float32    `yaml:"normals"`
	UVs       [][]float32    `yaml:"uvs"`
	Colors    [][]float32    `yaml:"colors"`
	Triangles []yamlTriangle `yaml:"triangles"`
}

type yamlTriangle struct {
	Verts []uint32 `yaml:"verts"`
	Loops []uint32 `yaml:"loops"` // defaults to verts
}

type yamlCurve struct {
	Name    string       `yaml:"name"`
	Splines []yamlSpline `yaml:"splines"`
}

type yamlSpline struct {
	Type   string      `yaml:"type"`
	Points []yamlPoint `yaml:"points"`
}

type yamlPoint struct {
	Co     []float32 `yaml:"co"`
	Radius *float32  `yaml:"radius"`
	Tilt   float32   `yaml:"tilt"`
}

type yamlObject struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Data     string      `yaml:"data"`
	Parent   string      `yaml:"parent"`
	Material string      `yaml:"material"`
	Matrix   [][]float32 `yaml:"matrix"` // row-major 4x4, overrides TRS
	Location []float32   `yaml:"location"`
	Rotation []float32   `yaml:"rotation"` // XYZ Euler, radians
	Scale    []float32   `yaml:"scale"`
}

// LoadYAML reads a YAML scene dump from disk.
func LoadYAML(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	sc.Path = path
	return sc, nil
}

// ParseYAML decodes a YAML scene dump. The returned scene has no Path.
func ParseYAML(data []byte) (*Scene, error) {
	var doc yamlScene
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	sc := &Scene{Generator: doc.Generator}
	for _, m := range doc.Materials {
		sc.Materials = append(sc.Materials, &Material{Name: m.Name, Images: m.Images})
	}

	meshes := make(map[string]*Mesh, len(doc.Meshes))
	for _, ym := range doc.Meshes {
		m, err := ym.toMesh()
		if err != nil {
			return nil, err
		}
		meshes[m.Name] = m
	}

	curves := make(map[string]*Curve, len(doc.Curves))
	for _, yc := range doc.Curves {
		c, err := yc.toCurve()
		if err != nil {
			return nil, err
		}
		curves[c.Name] = c
	}

	for _, yo := range doc.Objects {
		obj := &Object{
			Name:     yo.Name,
			Kind:     ParseKind(yo.Type),
			Parent:   yo.Parent,
			Material: yo.Material,
		}
		local, err := yo.local()
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", yo.Name, err)
		}
		obj.Local = local

		switch obj.Kind {
		case KindMesh:
			if obj.Mesh = meshes[yo.Data]; obj.Mesh == nil {
				return nil, fmt.Errorf("object %s: unknown mesh %q", yo.Name, yo.Data)
			}
		case KindCurve:
			if obj.Curve = curves[yo.Data]; obj.Curve == nil {
				return nil, fmt.Errorf("object %s: unknown curve %q", yo.Name, yo.Data)
			}
		}
		sc.Objects = append(sc.Objects, obj)
	}
	return sc, nil
}

func (ym *yamlMesh) toMesh() (*Mesh, error) {
	m := &Mesh{Name: ym.Name}
	var err error
	if m.Positions, err = vec3s(ym.Positions); err != nil {
		return nil, fmt.Errorf("mesh %s positions: %w", ym.Name, err)
	}
	if m.Normals, err = vec3s(ym.Normals); err != nil {
		return nil, fmt.Errorf("mesh %s normals: %w", ym.Name, err)
	}
	if ym.UVs != nil {
		m.UVs = make([]mgl32.Vec2, len(ym.UVs))
		for i, uv := range ym.UVs {
			if len(uv) != 2 {
				return nil, fmt.Errorf("mesh %s uv %d: want 2 components, got %d", ym.Name, i, len(uv))
			}
			m.UVs[i] = mgl32.Vec2{uv[0], uv[1]}
		}
	}
	if ym.Colors != nil {
		m.Colors = make([]mgl32.Vec4, len(ym.Colors))
		for i, c := range ym.Colors {
			switch len(c) {
			case 3:
				m.Colors[i] = mgl32.Vec4{c[0], c[1], c[2], 1}
			case 4:
				m.Colors[i] = mgl32.Vec4{c[0], c[1], c[2], c[3]}
			default:
				return nil, fmt.Errorf("mesh %s color %d: want 3 or 4 components, got %d", ym.Name, i, len(c))
			}
		}
	}
	for i, yt := range ym.Triangles {
		loops := yt.Loops
		if loops == nil {
			loops = yt.Verts
		}
		if len(yt.Verts) != 3 || len(loops) != 3 {
			return nil, fmt.Errorf("mesh %s triangle %d: want 3 corners", ym.Name, i)
		}
		m.Triangles = append(m.Triangles, Triangle{
			Verts: [3]uint32{yt.Verts[0], yt.Verts[1], yt.Verts[2]},
			Loops: [3]uint32{loops[0], loops[1], loops[2]},
		})
	}
	return m, nil
}

func (yc *yamlCurve) toCurve() (*Curve, error) {
	c := &Curve{Name: yc.Name}
	for i, ys := range yc.Splines {
		typ, err := ParseSplineType(ys.Type)
		if err != nil {
			return nil, fmt.Errorf("curve %s spline %d: %w", yc.Name, i, err)
		}
		s := Spline{Type: typ}
		for j, yp := range ys.Points {
			p := SplinePoint{Radius: 1, Tilt: yp.Tilt}
			if yp.Radius != nil {
				p.Radius = *yp.Radius
			}
			switch len(yp.Co) {
			case 3:
				p.Co = mgl32.Vec4{yp.Co[0], yp.Co[1], yp.Co[2], 1}
			case 4:
				p.Co = mgl32.Vec4{yp.Co[0], yp.Co[1], yp.Co[2], yp.Co[3]}
			default:
				return nil, fmt.Errorf("curve %s spline %d point %d: want 3 or 4 components", yc.Name, i, j)
			}
			s.Points = append(s.Points, p)
		}
		c.Splines = append(c.Splines, s)
	}
	return c, nil
}

func (yo *yamlObject) local() (mgl32.Mat4, error) {
	if yo.Matrix != nil {
		if len(yo.Matrix) != 4 {
			return mgl32.Mat4{}, fmt.Errorf("matrix: want 4 rows, got %d", len(yo.Matrix))
		}
		var m mgl32.Mat4
		for r, row := range yo.Matrix {
			if len(row) != 4 {
				return mgl32.Mat4{}, fmt.Errorf("matrix row %d: want 4 columns, got %d", r, len(row))
			}
			for c, v := range row {
				m.Set(r, c, v)
			}
		}
		return m, nil
	}

	loc, err := optVec3(yo.Location, mgl32.Vec3{})
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("location: %w", err)
	}
	rot, err := optVec3(yo.Rotation, mgl32.Vec3{})
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("rotation: %w", err)
	}
	scale, err := optVec3(yo.Scale, mgl32.Vec3{1, 1, 1})
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("scale: %w", err)
	}
	return ComposeTRS(loc, rot, scale), nil
}

// ComposeTRS builds T * Rz * Ry * Rx * S from an XYZ Euler rotation.
func ComposeTRS(loc, euler, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DZ(euler[2]).
		Mul4(mgl32.HomogRotate3DY(euler[1])).
		Mul4(mgl32.HomogRotate3DX(euler[0]))
	return mgl32.Translate3D(loc[0], loc[1], loc[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func vec3s(in [][]float32) ([]mgl32.Vec3, error) {
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		if len(v) != 3 {
			return nil, fmt.Errorf("element %d: want 3 components, got %d", i, len(v))
		}
		out[i] = mgl32.Vec3{v[0], v[1], v[2]}
	}
	return out, nil
}

func optVec3(v []float32, def mgl32.Vec3) (mgl32.Vec3, error) {
	if v == nil {
		return def, nil
	}
	if len(v) != 3 {
		return def, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}
