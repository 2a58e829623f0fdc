package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a column-major 4x4 matrix, laid out the way glUniformMatrix4fv
// expects it. Composition follows the column-vector convention: a.Mul4(b)
// applies b first.
type Mat4 = mgl32.Mat4

func Mat4Identity() Mat4 {
	return mgl32.Ident4()
}

func Mat4Translation(t Vec3) Mat4 {
	return mgl32.Translate3D(t.X, t.Y, t.Z)
}

// DegToRad converts degrees to radians. Every angle stored on entities and
// the camera is in degrees.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
