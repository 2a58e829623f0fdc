// Package entities holds the per-frame renderable instances, the scene
// light and the player the camera follows.
package entities

import (
	"terrain-renderer/math"
	"terrain-renderer/models"
)

// Entity places a textured model in the world. The renderer reads it during
// submission and never keeps it past the frame.
type Entity struct {
	Model    *models.TexturedModel
	Position math.Vec3

	RotX, RotY, RotZ float32
	Scale            float32

	// TextureIndex selects a sub-image of an atlas material, counted
	// row-major from the top left.
	TextureIndex int
}

func New(model *models.TexturedModel, position math.Vec3, rx, ry, rz, scale float32) *Entity {
	return &Entity{Model: model, Position: position, RotX: rx, RotY: ry, RotZ: rz, Scale: scale}
}

// NewAtlas is New for an atlas material showing sub-image index.
func NewAtlas(model *models.TexturedModel, index int, position math.Vec3, rx, ry, rz, scale float32) *Entity {
	e := New(model, position, rx, ry, rz, scale)
	e.TextureIndex = index
	return e
}

func (e *Entity) IncreasePosition(dx, dy, dz float32) {
	e.Position = e.Position.Add(math.NewVec3(dx, dy, dz))
}

func (e *Entity) IncreaseRotation(dx, dy, dz float32) {
	e.RotX += dx
	e.RotY += dy
	e.RotZ += dz
}

func (e *Entity) rows() int {
	if e.Model == nil || e.Model.Material == nil {
		return 1
	}
	return e.Model.Material.Rows()
}

// TextureXOffset is the atlas column of TextureIndex in texture space.
func (e *Entity) TextureXOffset() float32 {
	rows := e.rows()
	return float32(e.TextureIndex%rows) / float32(rows)
}

// TextureYOffset is the atlas row of TextureIndex in texture space.
func (e *Entity) TextureYOffset() float32 {
	rows := e.rows()
	return float32(e.TextureIndex/rows) / float32(rows)
}

// TransformationMatrix composes the model matrix for this instance.
func (e *Entity) TransformationMatrix() math.Mat4 {
	return math.TransformationMatrix(e.Position, e.RotX, e.RotY, e.RotZ, e.Scale)
}

// Light is the single directional scene light.
type Light struct {
	Position math.Vec3
	Colour   math.Vec3
}
