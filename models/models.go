// Package models pairs uploaded meshes with the material they are drawn
// with. A *TexturedModel is the key the renderer batches on.
package models

import "terrain-renderer/resources"

// Material is a texture plus the flags and scalars that shade it.
type Material struct {
	Texture *resources.Texture

	ShineDamper     float32
	Reflectivity    float32
	HasTransparency bool
	UseFakeLighting bool

	// NumberOfRows is the side length of a square texture atlas. 1 means
	// the texture is a single image.
	NumberOfRows int
}

func NewMaterial(tex *resources.Texture) *Material {
	return &Material{
		Texture:      tex,
		ShineDamper:  1,
		NumberOfRows: 1,
	}
}

// Rows returns NumberOfRows, treating values below 1 as 1.
func (m *Material) Rows() int {
	if m.NumberOfRows < 1 {
		return 1
	}
	return m.NumberOfRows
}

// TexturedModel is a mesh drawn with a material. Two models are batched
// together only if they are the same pointer.
type TexturedModel struct {
	Mesh     *resources.Mesh
	Material *Material
}

func NewTexturedModel(mesh *resources.Mesh, mat *Material) *TexturedModel {
	return &TexturedModel{Mesh: mesh, Material: mat}
}

// Uploaded reports whether the mesh and texture are live GPU resources.
func (m *TexturedModel) Uploaded() bool {
	return m != nil && m.Mesh.Valid() && m.Material != nil && m.Material.Texture.Valid()
}
