package math

import "github.com/chewxy/math32"

// degenerateEpsilon bounds |det| below which three points are treated as
// collinear in the XZ plane.
const degenerateEpsilon = 1e-6

func barycentricDet(p1, p2, p3 Vec3) float32 {
	return (p2.Z-p3.Z)*(p1.X-p3.X) + (p3.X-p2.X)*(p1.Z-p3.Z)
}

// IsDegenerate reports whether p1, p2, p3 are collinear when projected onto
// the XZ plane. BarycentricHeight is undefined for such triangles.
func IsDegenerate(p1, p2, p3 Vec3) bool {
	return math32.Abs(barycentricDet(p1, p2, p3)) < degenerateEpsilon
}

// BarycentricHeight interpolates the Y of the triangle p1 p2 p3 at the planar
// position pos, where pos.X is world X and pos.Y is world Z.
//
// Callers must reject degenerate triangles first; for those the result is
// NaN or Inf.
func BarycentricHeight(p1, p2, p3 Vec3, pos Vec2) float32 {
	det := barycentricDet(p1, p2, p3)
	l1 := ((p2.Z-p3.Z)*(pos.X-p3.X) + (p3.X-p2.X)*(pos.Y-p3.Z)) / det
	l2 := ((p3.Z-p1.Z)*(pos.X-p3.X) + (p1.X-p3.X)*(pos.Y-p3.Z)) / det
	l3 := 1 - l1 - l2
	return l1*p1.Y + l2*p2.Y + l3*p3.Y
}
