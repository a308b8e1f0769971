package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"levels/forest.blend", "levels/forest.rscn"},
		{"scene.yaml", "scene.rscn"},
		{"dir.v2/noext", "dir.v2/noext.rscn"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := OutputPath(tt.in)
			if err != nil {
				t.Fatalf("OutputPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := OutputPath(""); !errors.Is(err, ErrNoOutputPath) {
		t.Errorf("expected ErrNoOutputPath, got %v", err)
	}
}

func writeScene(dir string) *scene.Scene {
	return &scene.Scene{
		Path:      filepath.Join(dir, "level.yaml"),
		Generator: "test",
		Materials: []*scene.Material{{Name: "Mat", Images: []string{"tex/grass.png"}}},
		Objects: []*scene.Object{
			{Name: "Root", Kind: scene.KindEmpty, Local: mgl32.Ident4()},
			{Name: "Ground", Kind: scene.KindMesh, Parent: "Root", Local: mgl32.Translate3D(0, 0, 1), Material: "Mat", Mesh: quadMesh("Ground")},
			{Name: "Road", Kind: scene.KindCurve, Parent: "Root", Local: mgl32.Ident4(), Curve: &scene.Curve{Splines: []scene.Spline{{
				Type:   scene.SplineNURBS,
				Points: []scene.SplinePoint{{Co: mgl32.Vec4{0, 0, 0, 1}, Radius: 1}, {Co: mgl32.Vec4{0, 5, 0, 1}, Radius: 2}},
			}}}},
		},
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	s := writeScene(dir)

	res, err := New(Options{}, nil).ExportFile(context.Background(), s, "")
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	indexPath := filepath.Join(dir, "level.rscn")
	ix, err := rscn.ParseIndexFile(indexPath)
	if err != nil {
		t.Fatalf("ParseIndexFile: %v", err)
	}
	bin, err := os.ReadFile(BinaryPath(indexPath))
	if err != nil {
		t.Fatalf("reading binary: %v", err)
	}
	if !bytes.HasPrefix(bin, []byte(rscn.Magic)) {
		t.Errorf("binary does not start with magic")
	}
	if err := ix.Verify(bin); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if len(bin) != res.Container.Layout().End() {
		t.Errorf("binary size %d, want %d", len(bin), res.Container.Layout().End())
	}

	if ix.MeshCount != 1 || ix.SplineCount != 1 || ix.ObjectCount != 3 || ix.ImageCount != 1 {
		t.Errorf("counts img=%d msh=%d spl=%d obj=%d", ix.ImageCount, ix.MeshCount, ix.SplineCount, ix.ObjectCount)
	}
	if len(ix.Comments) != 1 || ix.Comments[0] != "test" {
		t.Errorf("comments %q", ix.Comments)
	}

	verts, indices, err := ix.ReadMesh(bin, 0)
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}
	want := res.Container.Meshes[0]
	if len(verts) != want.VertexCount || len(indices) != want.IndexCount {
		t.Errorf("read %d/%d, want %d/%d", len(verts), len(indices), want.VertexCount, want.IndexCount)
	}
	for i := range indices {
		if verts[indices[i]] != want.Vertices[want.Indices[i]] {
			t.Errorf("corner %d differs after read back", i)
		}
	}

	points, err := ix.ReadSpline(bin, 0)
	if err != nil {
		t.Fatalf("ReadSpline: %v", err)
	}
	if len(points) != 2 || points[1].Pos != [3]float32{0, 0, 5} || points[1].Radius != 2 {
		t.Errorf("spline points %+v", points)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the two outputs, found %v", names)
	}
}

func TestExportFile_NoOutputPath(t *testing.T) {
	s := writeScene("")
	s.Path = ""

	_, err := New(Options{}, nil).ExportFile(context.Background(), s, "")
	if !errors.Is(err, ErrNoOutputPath) {
		t.Errorf("expected ErrNoOutputPath, got %v", err)
	}

	if err := WriteFiles(rscn.NewContainer(), ""); !errors.Is(err, ErrNoOutputPath) {
		t.Errorf("WriteFiles: expected ErrNoOutputPath, got %v", err)
	}
}

func TestExportFile_ExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "custom.rscn")

	if _, err := New(Options{}, nil).ExportFile(context.Background(), writeScene(dir), out); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	for _, p := range []string{out, out + ".bin"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestWriteFiles_MissingDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "x.rscn")
	if err := WriteFiles(rscn.NewContainer(), out); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestWriteFiles_Overwrite(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "x.rscn")
	if err := os.WriteFile(out, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFiles(rscn.NewContainer(), out); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("rscn\nver 0 1\n")) {
		t.Errorf("index not replaced: %q", data)
	}
}
