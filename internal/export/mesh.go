package export

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakubtomsu/raven/pkg/math"
	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

// meshJob is one mesh queued for building, in scene order.
type meshJob struct {
	name string
	mesh *scene.Mesh
}

type meshResult struct {
	entry     rscn.MeshEntry
	oversized int // distinct vertex count when over the limit, else 0
}

// meshName returns the display name used for a mesh object's data.
func meshName(obj *scene.Object) string {
	if obj.Mesh.Name != "" {
		return obj.Mesh.Name
	}
	return obj.Name
}

// exportMeshes builds every distinct mesh in parallel and appends them to
// the container in scene order, so buffer offsets do not depend on
// scheduling.
func (p *pass) exportMeshes(ctx context.Context, objects []*scene.Object) error {
	var jobs []meshJob
	seen := make(map[*scene.Mesh]bool)

	for _, obj := range objects {
		if obj.Kind != scene.KindMesh {
			continue
		}
		if obj.Mesh == nil {
			return fmt.Errorf("%w: mesh object %s has no mesh data", ErrInvalidScene, obj.Name)
		}
		if seen[obj.Mesh] {
			continue
		}
		seen[obj.Mesh] = true

		name := p.name(meshName(obj))
		if _, dup := p.meshNames[name]; dup {
			p.warn(Warning{Kind: WarnDuplicateMesh, Name: name, Reason: "mesh name already exported, object " + obj.Name + " uses the first one"})
			continue
		}
		p.meshNames[name] = -1
		jobs = append(jobs, meshJob{name: name, mesh: obj.Mesh})
	}

	results := make([]meshResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if p.opts.Workers > 0 {
		g.SetLimit(p.opts.Workers)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := buildMesh(job.name, job.mesh, p.basis)
			if err != nil {
				return err
			}
			if entry.VertexCount > rscn.MaxMeshVertices {
				if !p.opts.SkipOversized {
					return fmt.Errorf("%w: %s has %d vertices", ErrMeshTooLarge, job.name, entry.VertexCount)
				}
				results[i].oversized = entry.VertexCount
				return nil
			}
			results[i].entry = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, r := range results {
		if r.oversized > 0 {
			p.warn(Warning{Kind: WarnOversizedMesh, Name: jobs[i].name, Reason: fmt.Sprintf("%d vertices exceed the 16-bit index range", r.oversized)})
			continue
		}
		idx := p.c.AddMesh(r.entry)
		p.meshNames[jobs[i].name] = idx
		m := &p.c.Meshes[idx]
		p.log.Debug("mesh added",
			zap.String("mesh", m.Name),
			zap.Int("indices", m.IndexCount),
			zap.Int("vertices", m.VertexCount),
		)
	}
	return nil
}

// buildMesh converts one mesh into deduplicated vertices and corner
// indices. VertexCount is always set; Vertices and Indices are left empty
// when the mesh does not fit 16-bit indices.
func buildMesh(name string, m *scene.Mesh, basis math.Basis) (rscn.MeshEntry, error) {
	if err := m.Validate(); err != nil {
		return rscn.MeshEntry{}, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	positions := append([]mgl32.Vec3(nil), m.Positions...)
	normals := append([]mgl32.Vec3(nil), m.Normals...)
	basis.Points(positions)
	basis.Normals(normals)

	corners := make([]rscn.Vertex, 0, len(m.Triangles)*3)
	for _, tri := range m.Triangles {
		for c := 0; c < 3; c++ {
			loop := tri.Loops[c]
			v := rscn.Vertex{
				Pos:    positions[tri.Verts[c]],
				Normal: rscn.QuantizeNormal(normals[loop]),
				Color:  rscn.DefaultColor,
			}
			var uv mgl32.Vec2
			if m.UVs != nil {
				uv = m.UVs[loop]
			}
			v.UV = rscn.FlipV(uv)
			if m.Colors != nil {
				v.Color = rscn.QuantizeColor(m.Colors[loop])
			}
			corners = append(corners, v)
		}
	}

	verts, idx := rscn.Dedup(corners)
	entry := rscn.MeshEntry{Name: name, VertexCount: len(verts)}
	if len(verts) > rscn.MaxMeshVertices {
		return entry, nil
	}

	entry.Vertices = verts
	entry.Indices = make([]uint16, len(idx))
	for i, x := range idx {
		entry.Indices[i] = uint16(x)
	}
	entry.IndexCount = len(entry.Indices)
	return entry, nil
}
