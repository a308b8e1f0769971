package scene

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfToHost maps glTF's Y-up axes onto the host's Z-up axes:
// (x, y, z) -> (x, -z, y).
var gltfToHost = mgl32.Mat3{
	1, 0, 0,
	0, 0, 1,
	0, -1, 0,
}

// LoadGLTF reads a .gltf or .glb file and converts it into a host scene.
// Geometry is rotated into Z-up, UVs are flipped to a bottom-left origin
// and linear vertex colors are encoded to sRGB, matching what the host
// application would hand to the exporter.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sc, err := FromGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	sc.Path = path
	return sc, nil
}

// FromGLTF converts a decoded glTF document.
func FromGLTF(doc *gltf.Document) (*Scene, error) {
	sc := &Scene{Generator: doc.Asset.Generator}

	for i, mat := range doc.Materials {
		m := &Material{Name: gltfName(mat.Name, "material", i)}
		if img := gltfBaseColorImage(doc, mat); img != "" {
			m.Images = append(m.Images, img)
		}
		sc.Materials = append(sc.Materials, m)
	}

	meshes := make([]*Mesh, len(doc.Meshes))
	meshMaterial := make([]string, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		m, matIdx, err := gltfMesh(doc, gm, i)
		if err != nil {
			return nil, err
		}
		meshes[i] = m
		if matIdx >= 0 && matIdx < len(sc.Materials) {
			meshMaterial[i] = sc.Materials[matIdx].Name
		}
	}

	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(parents) {
				parents[c] = i
			}
		}
	}

	for i, n := range doc.Nodes {
		obj := &Object{
			Name:  gltfName(n.Name, "node", i),
			Kind:  KindEmpty,
			Local: gltfLocal(n),
		}
		if p := parents[i]; p >= 0 {
			obj.Parent = gltfName(doc.Nodes[p].Name, "node", p)
		}
		if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(meshes) {
			obj.Kind = KindMesh
			obj.Mesh = meshes[*n.Mesh]
			obj.Material = meshMaterial[*n.Mesh]
		} else if n.Camera != nil {
			obj.Kind = KindOther
		}
		sc.Objects = append(sc.Objects, obj)
	}
	return sc, nil
}

// gltfMesh merges the triangle primitives of a glTF mesh into one host
// mesh. glTF attributes are per vertex, so every vertex is also its loop.
// It returns the material index of the first primitive, or -1.
func gltfMesh(doc *gltf.Document, gm *gltf.Mesh, idx int) (*Mesh, int, error) {
	m := &Mesh{Name: gltfName(gm.Name, "mesh", idx)}
	material := -1
	var uvs []mgl32.Vec2
	var colors []mgl32.Vec4
	hasUV, hasColor := false, false

	for pi, p := range gm.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		if material < 0 && p.Material != nil {
			material = *p.Material
		}

		pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, 0, fmt.Errorf("mesh %s primitive %d positions: %w", m.Name, pi, err)
		}
		n := len(pos)
		base := uint32(len(m.Positions))

		var nor [][3]float32
		if a, ok := p.Attributes["NORMAL"]; ok {
			if nor, err = modeler.ReadNormal(doc, doc.Accessors[a], nil); err != nil {
				return nil, 0, fmt.Errorf("mesh %s primitive %d normals: %w", m.Name, pi, err)
			}
		}
		var tex [][2]float32
		if a, ok := p.Attributes["TEXCOORD_0"]; ok {
			if tex, err = modeler.ReadTextureCoord(doc, doc.Accessors[a], nil); err != nil {
				return nil, 0, fmt.Errorf("mesh %s primitive %d uvs: %w", m.Name, pi, err)
			}
			hasUV = true
		}
		var col [][4]uint8
		if a, ok := p.Attributes["COLOR_0"]; ok {
			if col, err = modeler.ReadColor(doc, doc.Accessors[a], nil); err != nil {
				return nil, 0, fmt.Errorf("mesh %s primitive %d colors: %w", m.Name, pi, err)
			}
			hasColor = true
		}

		for v := 0; v < n; v++ {
			m.Positions = append(m.Positions, gltfToHost.Mul3x1(mgl32.Vec3(pos[v])))
			var normal mgl32.Vec3
			if v < len(nor) {
				normal = gltfToHost.Mul3x1(mgl32.Vec3(nor[v]))
			}
			m.Normals = append(m.Normals, normal)

			uv := mgl32.Vec2{0, 1}
			if v < len(tex) {
				uv = mgl32.Vec2{tex[v][0], 1 - tex[v][1]}
			}
			uvs = append(uvs, uv)

			c := mgl32.Vec4{1, 1, 1, 1}
			if v < len(col) {
				c = mgl32.Vec4{
					linearToSRGB(float32(col[v][0]) / 255),
					linearToSRGB(float32(col[v][1]) / 255),
					linearToSRGB(float32(col[v][2]) / 255),
					float32(col[v][3]) / 255,
				}
			}
			colors = append(colors, c)
		}

		var indices []uint32
		if p.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil); err != nil {
				return nil, 0, fmt.Errorf("mesh %s primitive %d indices: %w", m.Name, pi, err)
			}
		} else {
			indices = make([]uint32, n)
			for v := range indices {
				indices[v] = uint32(v)
			}
		}
		for t := 0; t+2 < len(indices); t += 3 {
			tri := [3]uint32{base + indices[t], base + indices[t+1], base + indices[t+2]}
			m.Triangles = append(m.Triangles, Triangle{Verts: tri, Loops: tri})
		}
	}

	if hasUV {
		m.UVs = uvs
	}
	if hasColor {
		m.Colors = colors
	}
	return m, material, m.Validate()
}

var identity16 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// gltfLocal returns the node transform conjugated into host axes.
func gltfLocal(n *gltf.Node) mgl32.Mat4 {
	var local mgl32.Mat4
	if mat := n.MatrixOrDefault(); mat != identity16 {
		for i, v := range mat {
			local[i] = float32(v)
		}
	} else {
		t := n.Translation
		r := n.RotationOrDefault()
		s := n.ScaleOrDefault()
		q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
		local = mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
			Mul4(q.Mat4()).
			Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
	}

	c := gltfToHost.Mat4()
	return c.Mul4(local).Mul4(gltfToHost.Transpose().Mat4())
}

func gltfBaseColorImage(doc *gltf.Document, mat *gltf.Material) string {
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return ""
	}
	ti := mat.PBRMetallicRoughness.BaseColorTexture.Index
	if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return ""
	}
	src := *doc.Textures[ti].Source
	if src < 0 || src >= len(doc.Images) {
		return ""
	}
	img := doc.Images[src]
	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		return img.URI
	}
	return gltfName(img.Name, "image", src)
}

func gltfName(name, prefix string, idx int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s_%d", prefix, idx)
}

func linearToSRGB(x float32) float32 {
	if x <= 0.0031308 {
		return x * 12.92
	}
	return 1.055*math32.Pow(x, 1/2.4) - 0.055
}
