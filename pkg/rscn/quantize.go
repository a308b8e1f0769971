package rscn

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultColor is used for every vertex of a mesh without a color attribute.
var DefaultColor = [3]uint8{255, 255, 255}

// QuantizeNormal packs a target-space unit normal into three bytes.
//
// Each component is remapped from [-1,1] to [0,1], clamped, scaled by 127
// and truncated. The stored values therefore only use [0,127] of the
// signed byte range; readers decode with DecodeNormal. This halves the
// available precision and is part of the format, not an encoding error.
func QuantizeNormal(n mgl32.Vec3) [3]int8 {
	var q [3]int8
	for i := 0; i < 3; i++ {
		x := n[i]*0.5 + 0.5
		if x != x { // NaN
			x = 0.5
		}
		q[i] = int8(clamp01(x) * 127)
	}
	return q
}

// DecodeNormal reverses QuantizeNormal up to quantization error.
func DecodeNormal(q [3]int8) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(q[0])/127*2 - 1,
		float32(q[1])/127*2 - 1,
		float32(q[2])/127*2 - 1,
	}
}

// SRGBToLinear converts one sRGB-encoded channel to linear.
func SRGBToLinear(x float32) float32 {
	if x < 0.04045 {
		return x / 12.92
	}
	return math32.Pow((x+0.055)/1.055, 2.4)
}

// QuantizeColor converts an sRGB color to linear bytes. Alpha is ignored.
// Channels are scaled by 255 and truncated; out of range input saturates.
func QuantizeColor(c mgl32.Vec4) [3]uint8 {
	var q [3]uint8
	for i := 0; i < 3; i++ {
		q[i] = uint8(clamp01(SRGBToLinear(c[i])) * 255)
	}
	return q
}

// FlipV converts a UV from bottom-left to top-left origin.
func FlipV(uv mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{uv[0], 1 - uv[1]}
}

// clamp01 clamps x to [0,1]. NaN maps to 0.
func clamp01(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
