package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the camera state the view matrix is derived from.
type Viewer interface {
	Position() Vec3
	Pitch() float32
	Yaw() float32
}

// TransformationMatrix builds a model matrix: identity, then translate, then
// rotate about X, Y and Z (degrees), then scale uniformly. Each step
// post-multiplies, so a vertex is scaled first and translated last.
func TransformationMatrix(translation Vec3, rx, ry, rz, scale float32) Mat4 {
	m := mgl32.Ident4()
	m = m.Mul4(Mat4Translation(translation))
	m = m.Mul4(mgl32.HomogRotate3DX(DegToRad(rx)))
	m = m.Mul4(mgl32.HomogRotate3DY(DegToRad(ry)))
	m = m.Mul4(mgl32.HomogRotate3DZ(DegToRad(rz)))
	m = m.Mul4(mgl32.Scale3D(scale, scale, scale))
	return m
}

// ViewMatrix rotates by pitch about X, then by yaw about Y, then translates
// by the negated camera position, moving the world opposite to the camera.
func ViewMatrix(v Viewer) Mat4 {
	pos := v.Position()
	m := mgl32.Ident4()
	m = m.Mul4(mgl32.HomogRotate3DX(DegToRad(v.Pitch())))
	m = m.Mul4(mgl32.HomogRotate3DY(DegToRad(v.Yaw())))
	m = m.Mul4(Mat4Translation(pos.Negate()))
	return m
}

// ProjectionMatrix builds a perspective projection. fov is in degrees and
// spans the horizontal axis; the vertical scale is widened by aspect.
func ProjectionMatrix(fov, aspect, near, far float32) Mat4 {
	xScale := 1 / math32.Tan(DegToRad(fov/2))
	yScale := xScale * aspect
	frustumLength := far - near

	var m Mat4
	m[0] = xScale
	m[5] = yScale
	m[10] = -(far + near) / frustumLength
	m[11] = -1
	m[14] = -(2 * near * far) / frustumLength
	m[15] = 0
	return m
}
