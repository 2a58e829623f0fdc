// Package resources owns every GPU vertex array, buffer and texture created
// while loading a scene. Handles are only ever released together through
// Manager.Teardown.
package resources

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"terrain-renderer/internal/gpu"
)

// Attribute slots shared by every mesh and shader program.
const (
	PositionSlot uint32 = 0
	TexCoordSlot uint32 = 1
	NormalSlot   uint32 = 2
)

// LodBias sharpens minified textures.
const LodBias float32 = -0.5

var (
	ErrEmptyAttribute  = errors.New("resources: empty vertex attribute")
	ErrBadStride       = errors.New("resources: attribute length is not a multiple of its stride")
	ErrIndexOutOfRange = errors.New("resources: index out of range")
	ErrAttributeCount  = errors.New("resources: attribute vertex counts differ")
	ErrTornDown        = errors.New("resources: manager has been torn down")
)

// MeshData is the mesh upload interface: positions (stride 3), texture
// coordinates (stride 2), normals (stride 3) and 0-based triangle indices.
type MeshData struct {
	Positions []float32
	TexCoords []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount is the number of vertices described by Positions.
func (d MeshData) VertexCount() int { return len(d.Positions) / 3 }

// TextureData is decoded RGBA8 pixel data.
type TextureData struct {
	Width, Height int
	Pixels        []byte
}

// Stats counts the handles a Manager currently owns.
type Stats struct {
	VertexArrays int
	Buffers      int
	Textures     int
}

// Manager is the GPU resource registry. It is not safe for concurrent use;
// like the GL context it drives, it belongs to the render thread.
type Manager struct {
	ctx gpu.Context
	log *zap.Logger

	vaos     []gpu.VertexArray
	buffers  []gpu.Buffer
	textures []gpu.Texture

	generation uint32
	tornDown   bool
}

func NewManager(ctx gpu.Context, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{ctx: ctx, log: log, generation: 1}
}

// Upload validates data, creates a vertex array with one buffer per
// attribute plus an index buffer, and registers every handle.
func (m *Manager) Upload(data MeshData) (*Mesh, error) {
	if m.tornDown {
		return nil, ErrTornDown
	}
	if err := validate(data); err != nil {
		return nil, err
	}

	vao := m.ctx.GenVertexArray()
	m.vaos = append(m.vaos, vao)
	m.ctx.BindVertexArray(vao)

	m.bindIndices(data.Indices)
	m.storeAttribute(PositionSlot, 3, data.Positions)
	m.storeAttribute(TexCoordSlot, 2, data.TexCoords)
	m.storeAttribute(NormalSlot, 3, data.Normals)

	m.ctx.BindVertexArray(0)

	return &Mesh{
		vao:         vao,
		indexCount:  int32(len(data.Indices)),
		vertexCount: data.VertexCount(),
		owner:       m,
		generation:  m.generation,
	}, nil
}

func validate(data MeshData) error {
	attrs := []struct {
		name   string
		stride int
		values []float32
	}{
		{"positions", 3, data.Positions},
		{"texture coordinates", 2, data.TexCoords},
		{"normals", 3, data.Normals},
	}
	for _, a := range attrs {
		if len(a.values) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyAttribute, a.name)
		}
		if len(a.values)%a.stride != 0 {
			return fmt.Errorf("%w: %s has %d values, stride %d", ErrBadStride, a.name, len(a.values), a.stride)
		}
	}
	n := data.VertexCount()
	for _, a := range attrs[1:] {
		if got := len(a.values) / a.stride; got != n {
			return fmt.Errorf("%w: %d %s for %d positions", ErrAttributeCount, got, a.name, n)
		}
	}
	if len(data.Indices) == 0 {
		return fmt.Errorf("%w: indices", ErrEmptyAttribute)
	}
	for i, idx := range data.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: indices[%d] = %d, vertex count %d", ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

func (m *Manager) bindIndices(indices []uint32) {
	ebo := m.ctx.GenBuffer()
	m.buffers = append(m.buffers, ebo)
	m.ctx.BindBuffer(gpu.ElementArrayBuffer, ebo)
	m.ctx.BufferIndices(indices)
}

func (m *Manager) storeAttribute(slot uint32, size int32, values []float32) {
	vbo := m.ctx.GenBuffer()
	m.buffers = append(m.buffers, vbo)
	m.ctx.BindBuffer(gpu.ArrayBuffer, vbo)
	m.ctx.BufferFloats(gpu.ArrayBuffer, values)
	m.ctx.VertexAttribPointer(slot, size)
	m.ctx.BindBuffer(gpu.ArrayBuffer, 0)
}

// UploadTexture creates a mip-mapped 2D texture from RGBA8 pixels.
func (m *Manager) UploadTexture(data TextureData) (*Texture, error) {
	if m.tornDown {
		return nil, ErrTornDown
	}
	if data.Width <= 0 || data.Height <= 0 {
		return nil, fmt.Errorf("resources: invalid texture size %dx%d", data.Width, data.Height)
	}
	if want := data.Width * data.Height * 4; len(data.Pixels) != want {
		return nil, fmt.Errorf("resources: texture has %d bytes, want %d", len(data.Pixels), want)
	}

	tex := m.ctx.GenTexture()
	m.textures = append(m.textures, tex)
	m.ctx.ActiveTexture(0)
	m.ctx.BindTexture(tex)
	m.ctx.TexImage2D(data.Width, data.Height, data.Pixels)
	m.ctx.GenerateMipmap(LodBias)
	m.ctx.BindTexture(0)

	return &Texture{
		id:         tex,
		width:      data.Width,
		height:     data.Height,
		owner:      m,
		generation: m.generation,
	}, nil
}

// Teardown deletes every registered handle exactly once. Later calls do
// nothing.
func (m *Manager) Teardown() {
	if m.tornDown {
		return
	}
	stats := m.Stats()
	for _, vao := range m.vaos {
		m.ctx.DeleteVertexArray(vao)
	}
	for _, buf := range m.buffers {
		m.ctx.DeleteBuffer(buf)
	}
	for _, tex := range m.textures {
		m.ctx.DeleteTexture(tex)
	}
	m.vaos, m.buffers, m.textures = nil, nil, nil
	m.tornDown = true
	m.generation++

	m.log.Debug("gpu resources released",
		zap.Int("vertex_arrays", stats.VertexArrays),
		zap.Int("buffers", stats.Buffers),
		zap.Int("textures", stats.Textures))
}

func (m *Manager) Stats() Stats {
	return Stats{
		VertexArrays: len(m.vaos),
		Buffers:      len(m.buffers),
		Textures:     len(m.textures),
	}
}
