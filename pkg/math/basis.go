// Package math provides the coordinate conversions applied to exported scene data.
package math

import "github.com/go-gl/mathgl/mgl32"

// Basis is a fixed change of basis between a source and a target
// coordinate convention. Inverse must be the inverse of Forward.
type Basis struct {
	Forward mgl32.Mat3
	Inverse mgl32.Mat3
}

// ZUpToYUp swaps the second and third axes: source Z-up to target Y-up.
// It is a pure axis permutation, so it preserves distances and angles.
var ZUpToYUp = NewBasis(mgl32.Mat3{
	1, 0, 0,
	0, 0, 1,
	0, 1, 0,
})

// NewBasis builds a Basis from its forward matrix.
func NewBasis(forward mgl32.Mat3) Basis {
	return Basis{Forward: forward, Inverse: forward.Inv()}
}

// Point converts a position into the target space.
func (b Basis) Point(p mgl32.Vec3) mgl32.Vec3 {
	return b.Forward.Mul3x1(p)
}

// PointInverse converts a target-space position back into the source space.
func (b Basis) PointInverse(p mgl32.Vec3) mgl32.Vec3 {
	return b.Inverse.Mul3x1(p)
}

// Normal converts a normal using the inverse-transpose of Forward.
// For an orthogonal basis this equals Forward.
func (b Basis) Normal(n mgl32.Vec3) mgl32.Vec3 {
	return b.Inverse.Transpose().Mul3x1(n)
}

// NormalInverse undoes Normal.
func (b Basis) NormalInverse(n mgl32.Vec3) mgl32.Vec3 {
	return b.Forward.Transpose().Mul3x1(n)
}

// Linear conjugates a 3x3 linear transform: C * M * C^-1.
func (b Basis) Linear(m mgl32.Mat3) mgl32.Mat3 {
	return b.Forward.Mul3(m).Mul3(b.Inverse)
}

// Transform splits a local 4x4 transform into translation and 3x3 linear
// part, both expressed in the target space.
func (b Basis) Transform(local mgl32.Mat4) (mgl32.Vec3, mgl32.Mat3) {
	return b.Point(local.Col(3).Vec3()), b.Linear(local.Mat3())
}

// Points converts a slice of positions in place.
func (b Basis) Points(ps []mgl32.Vec3) {
	for i := range ps {
		ps[i] = b.Point(ps[i])
	}
}

// Normals converts a slice of normals in place.
func (b Basis) Normals(ns []mgl32.Vec3) {
	m := b.Inverse.Transpose()
	for i := range ns {
		ns[i] = m.Mul3x1(ns[i])
	}
}
