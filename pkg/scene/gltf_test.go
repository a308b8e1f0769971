package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestFromGLTF_Hierarchy(t *testing.T) {
	doc := &gltf.Document{
		Asset: gltf.Asset{Generator: "test exporter"},
		Materials: []*gltf.Material{{
			Name: "Wood",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
		}},
		Textures: []*gltf.Texture{{Source: gltf.Index(0)}},
		Images:   []*gltf.Image{{URI: "textures/wood.png"}},
		Nodes: []*gltf.Node{
			{
				Name:        "Root",
				Children:    []int{1},
				Translation: [3]float64{1, 2, 3},
				Rotation:    [4]float64{0, 0, 0, 1},
				Scale:       [3]float64{1, 1, 1},
			},
			{
				Rotation: [4]float64{0, 0, 0, 1},
				Scale:    [3]float64{1, 1, 1},
				Camera:   gltf.Index(0),
			},
		},
	}

	sc, err := FromGLTF(doc)
	if err != nil {
		t.Fatalf("FromGLTF failed: %v", err)
	}
	if sc.Generator != "test exporter" {
		t.Errorf("Generator = %q", sc.Generator)
	}
	if len(sc.Materials) != 1 || sc.Materials[0].Images[0] != "textures/wood.png" {
		t.Fatalf("materials = %+v", sc.Materials)
	}
	if len(sc.Objects) != 2 {
		t.Fatalf("object count = %d, want 2", len(sc.Objects))
	}

	root := sc.Objects[0]
	if root.Kind != KindEmpty || root.Parent != "" {
		t.Errorf("root = %+v", root)
	}
	// glTF (1, 2, 3) Y-up is (1, -3, 2) Z-up.
	if got := root.Local.Col(3).Vec3(); !got.ApproxEqualThreshold(mgl32.Vec3{1, -3, 2}, 1e-6) {
		t.Errorf("root translation = %v, want (1, -3, 2)", got)
	}

	child := sc.Objects[1]
	if child.Name != "node_1" || child.Parent != "Root" || child.Kind != KindOther {
		t.Errorf("child = %+v", child)
	}
}

func TestLinearToSRGB(t *testing.T) {
	for _, x := range []float32{0, 0.001, 0.2, 0.5, 1} {
		got := linearToSRGB(x)
		back := got / 12.92
		if got >= 0.04045 {
			back = math32.Pow((got+0.055)/1.055, 2.4)
		}
		if d := back - x; d < -1e-4 || d > 1e-4 {
			t.Errorf("linearToSRGB(%v) = %v does not round trip (%v)", x, got, back)
		}
	}
}

// meshDoc builds a glTF mesh with an indexed triangle primitive carrying
// every attribute, a point primitive and a bare non-indexed triangle
// primitive. Its one node places the mesh through a matrix.
func meshDoc() *gltf.Document {
	doc := &gltf.Document{
		Materials: []*gltf.Material{{Name: "Paint"}},
	}
	indexed := &gltf.Primitive{
		Mode: gltf.PrimitiveTriangles,
		Attributes: gltf.PrimitiveAttributes{
			"POSITION":   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 2, 3}, {0, 1, 0}}),
			"NORMAL":     modeler.WriteNormal(doc, [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 0, 1}, {0, 1, 0}}),
			"TEXCOORD_0": modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0.25}, {0.5, 0.75}, {0, 1}}),
			"COLOR_0":    modeler.WriteColor(doc, [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 51}, {128, 128, 128, 255}}),
		},
		Indices:  gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})),
		Material: gltf.Index(0),
	}
	points := &gltf.Primitive{
		Mode:       gltf.PrimitivePoints,
		Attributes: gltf.PrimitiveAttributes{"POSITION": modeler.WritePosition(doc, [][3]float32{{5, 5, 5}})},
	}
	bare := &gltf.Primitive{
		Mode:       gltf.PrimitiveTriangles,
		Attributes: gltf.PrimitiveAttributes{"POSITION": modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}})},
	}
	doc.Meshes = []*gltf.Mesh{{Name: "Merged", Primitives: []*gltf.Primitive{indexed, points, bare}}}
	doc.Nodes = []*gltf.Node{{
		Name: "Placed",
		Mesh: gltf.Index(0),
		// Column major: scale 2 along x, translation (1, 2, 3).
		Matrix: [16]float64{2, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1},
	}}
	return doc
}

func TestFromGLTF_Mesh(t *testing.T) {
	sc, err := FromGLTF(meshDoc())
	if err != nil {
		t.Fatalf("FromGLTF failed: %v", err)
	}
	if len(sc.Objects) != 1 {
		t.Fatalf("object count = %d, want 1", len(sc.Objects))
	}
	obj := sc.Objects[0]
	if obj.Kind != KindMesh || obj.Material != "Paint" {
		t.Fatalf("object = %+v", obj)
	}
	m := obj.Mesh

	// The point primitive is skipped, so the bare primitive starts at vertex 4.
	if len(m.Positions) != 7 || len(m.Normals) != 7 {
		t.Fatalf("positions/normals = %d/%d, want 7/7", len(m.Positions), len(m.Normals))
	}
	wantTris := [][3]uint32{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}}
	if len(m.Triangles) != len(wantTris) {
		t.Fatalf("triangles = %v", m.Triangles)
	}
	for i, want := range wantTris {
		if m.Triangles[i].Verts != want || m.Triangles[i].Loops != want {
			t.Errorf("triangle %d = %+v, want %v", i, m.Triangles[i], want)
		}
	}

	// (x, y, z) Y-up is (x, -z, y) Z-up.
	if got := m.Positions[2]; !got.ApproxEqualThreshold(mgl32.Vec3{1, -3, 2}, 1e-6) {
		t.Errorf("position 2 = %v, want (1, -3, 2)", got)
	}
	if got := m.Positions[6]; !got.ApproxEqualThreshold(mgl32.Vec3{1, -1, 0}, 1e-6) {
		t.Errorf("position 6 = %v, want (1, -1, 0)", got)
	}
	if got := m.Normals[0]; !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("normal 0 = %v, want (0, 0, 1)", got)
	}
	if got := m.Normals[2]; !got.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-6) {
		t.Errorf("normal 2 = %v, want (0, -1, 0)", got)
	}
	if m.Normals[5] != (mgl32.Vec3{}) {
		t.Errorf("bare primitive normal = %v, want zero", m.Normals[5])
	}

	// UVs are stored with a bottom-left origin.
	if len(m.UVs) != 7 {
		t.Fatalf("uv count = %d, want 7", len(m.UVs))
	}
	if m.UVs[1] != (mgl32.Vec2{1, 0.75}) || m.UVs[2] != (mgl32.Vec2{0.5, 0.25}) {
		t.Errorf("uvs = %v", m.UVs[:4])
	}
	if m.UVs[4] != (mgl32.Vec2{0, 1}) {
		t.Errorf("bare primitive uv = %v, want (0, 1)", m.UVs[4])
	}

	// Colors are encoded to sRGB; alpha stays linear.
	if len(m.Colors) != 7 {
		t.Fatalf("color count = %d, want 7", len(m.Colors))
	}
	if got := m.Colors[0]; !got.ApproxEqualThreshold(mgl32.Vec4{1, 0, 0, 1}, 1e-6) {
		t.Errorf("color 0 = %v", got)
	}
	if got := m.Colors[2][3]; math32.Abs(got-0.2) > 1e-6 {
		t.Errorf("color 2 alpha = %v, want 0.2", got)
	}
	if got, want := m.Colors[3][0], linearToSRGB(128.0/255); got != want {
		t.Errorf("color 3 red = %v, want %v", got, want)
	}
	if m.Colors[6] != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("bare primitive color = %v, want white", m.Colors[6])
	}

	// The node matrix is conjugated into host axes.
	if got := obj.Local.Col(3).Vec3(); !got.ApproxEqualThreshold(mgl32.Vec3{1, -3, 2}, 1e-6) {
		t.Errorf("translation = %v, want (1, -3, 2)", got)
	}
	if got := obj.Local.At(0, 0); got != 2 {
		t.Errorf("x scale = %v, want 2", got)
	}
	if got := obj.Local.At(1, 1); got != 1 {
		t.Errorf("y scale = %v, want 1", got)
	}
}

func TestFromGLTF_NoPositions(t *testing.T) {
	doc := &gltf.Document{
		Meshes: []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Mode: gltf.PrimitiveTriangles, Attributes: gltf.PrimitiveAttributes{}}}}},
		Nodes:  []*gltf.Node{{Mesh: gltf.Index(0)}},
	}
	sc, err := FromGLTF(doc)
	if err != nil {
		t.Fatalf("FromGLTF failed: %v", err)
	}
	m := sc.Objects[0].Mesh
	if m.Name != "mesh_0" || len(m.Positions) != 0 || m.UVs != nil || m.Colors != nil {
		t.Errorf("mesh = %+v", m)
	}
}
