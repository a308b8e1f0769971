package export

import (
	"go.uber.org/zap"

	"github.com/jakubtomsu/raven/pkg/encoding"
	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

// collectImages registers every image bound by a material. A material maps
// to its first image even when that image was already registered by an
// earlier material.
func (p *pass) collectImages(materials []*scene.Material) {
	for _, mat := range materials {
		for _, img := range mat.Images {
			base := encoding.FoldASCII(encoding.ImageBasename(img))
			if base == "" {
				continue
			}
			idx, ok := p.images[base]
			if !ok {
				idx = p.c.AddImage(base)
				p.images[base] = idx
			}
			if _, ok := p.materials[mat.Name]; !ok {
				p.materials[mat.Name] = idx
			}
		}
	}
}

// exported reports whether objects of kind k appear in the object table.
func exported(k scene.Kind) bool {
	return k == scene.KindEmpty || k == scene.KindMesh || k == scene.KindCurve
}

// assignHandles numbers the exported objects in scene order. Handles are
// final before any parent is resolved, so children may precede parents.
func (p *pass) assignHandles(objects []*scene.Object) {
	n := 0
	for _, obj := range objects {
		if !exported(obj.Kind) {
			continue
		}
		name := p.name(obj.Name)
		if _, dup := p.objects[name]; dup {
			p.warn(Warning{Kind: WarnDuplicateObject, Name: name, Reason: "name lookups resolve to the first object"})
		} else {
			p.objects[name] = n
		}
		n++
	}
}

// exportObjects resolves relationships through the handle tables and
// appends one entry per exported object. Misses resolve to -1.
func (p *pass) exportObjects(objects []*scene.Object) {
	for _, obj := range objects {
		if !exported(obj.Kind) {
			p.log.Debug("object ignored", zap.String("object", obj.Name), zap.Stringer("kind", obj.Kind))
			continue
		}

		entry := rscn.ObjectEntry{
			Name:   p.name(obj.Name),
			Mesh:   -1,
			Parent: p.lookup(p.objects, obj.Parent),
			Image:  -1,
		}
		if obj.Material != "" {
			if idx, ok := p.materials[obj.Material]; ok {
				entry.Image = idx
			}
		}

		switch obj.Kind {
		case scene.KindEmpty:
			entry.Kind = rscn.ObjectEmpty
		case scene.KindMesh:
			entry.Kind = rscn.ObjectMesh
			entry.Mesh = p.lookup(p.meshNames, meshName(obj))
		case scene.KindCurve:
			entry.Kind = rscn.ObjectSpline
		}

		entry.Position, entry.Linear = p.basis.Transform(obj.Local)
		p.c.AddObject(entry)
	}
}

// lookup returns the index of a display name in a handle table, or -1.
func (p *pass) lookup(table map[string]int, name string) int {
	if name == "" {
		return -1
	}
	if idx, ok := table[p.name(name)]; ok {
		return idx
	}
	return -1
}

// breakCycles detaches the object that closes a parent loop. Loops come from
// names that normalize to the same key, since the table resolves each key to
// its first object.
func (p *pass) breakCycles() {
	const (
		unvisited = iota
		onPath
		done
	)
	objs := p.c.Objects
	state := make([]int, len(objs))
	var path []int
	for i := range objs {
		path = path[:0]
		for j := i; j >= 0 && j < len(objs) && state[j] != done; j = objs[j].Parent {
			if state[j] == onPath {
				// The last object on the path points back into it.
				last := path[len(path)-1]
				p.warn(Warning{Kind: WarnParentCycle, Name: objs[last].Name, Reason: "parent chain loops back to " + objs[j].Name + ", parent cleared"})
				objs[last].Parent = -1
				break
			}
			state[j] = onPath
			path = append(path, j)
		}
		for _, j := range path {
			state[j] = done
		}
	}
}
