package resources

import "terrain-renderer/internal/gpu"

// Mesh is a GPU-resident indexed triangle mesh. It is immutable and only
// released by its Manager's Teardown.
type Mesh struct {
	vao         gpu.VertexArray
	indexCount  int32
	vertexCount int

	owner      *Manager
	generation uint32
}

func (m *Mesh) VAO() gpu.VertexArray { return m.vao }
func (m *Mesh) IndexCount() int32    { return m.indexCount }
func (m *Mesh) VertexCount() int     { return m.vertexCount }

// Valid reports whether the mesh's handles are still alive.
func (m *Mesh) Valid() bool {
	return m != nil && m.owner != nil && m.owner.generation == m.generation
}

// Texture is an uploaded 2D texture.
type Texture struct {
	id            gpu.Texture
	width, height int

	owner      *Manager
	generation uint32
}

func (t *Texture) ID() gpu.Texture { return t.id }
func (t *Texture) Width() int      { return t.width }
func (t *Texture) Height() int     { return t.height }

func (t *Texture) Valid() bool {
	return t != nil && t.owner != nil && t.owner.generation == t.generation
}
