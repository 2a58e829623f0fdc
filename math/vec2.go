package math

// Vec2 is a planar point or direction. Terrain queries use it as (X, Z).
type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}
