package rscn

import (
	"bytes"
	"sort"
)

// Dedup collapses structurally identical corner records.
//
// It returns the distinct records sorted by their packed key, and for
// every corner (in input order) the index of its record in that set.
// The output is independent of map iteration order, and because indices
// follow corner order the source triangle winding is preserved.
func Dedup(corners []Vertex) ([]Vertex, []uint32) {
	keys := make([]VertexKey, len(corners))
	slot := make(map[VertexKey]int, len(corners))
	var distinct []VertexKey

	for i, c := range corners {
		k := c.Key()
		keys[i] = k
		if _, ok := slot[k]; !ok {
			slot[k] = len(distinct)
			distinct = append(distinct, k)
		}
	}

	order := make([]int, len(distinct))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(distinct[order[i]][:], distinct[order[j]][:]) < 0
	})

	rank := make([]uint32, len(distinct))
	verts := make([]Vertex, len(distinct))
	for pos, d := range order {
		rank[d] = uint32(pos)
		verts[pos] = DecodeVertex(distinct[d][:])
	}

	indices := make([]uint32, len(corners))
	for i, k := range keys {
		indices[i] = rank[slot[k]]
	}
	return verts, indices
}
