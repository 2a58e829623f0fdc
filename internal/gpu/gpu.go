// Package gpu defines the binding contract between the renderer and the
// graphics driver. All state it describes (bound vertex array, active
// program, texture units, capabilities) is global to the context and is
// only ever touched from the thread that owns it.
package gpu

import "terrain-renderer/math"

type (
	VertexArray uint32
	Buffer      uint32
	Texture     uint32
	Program     uint32
	Shader      uint32
)

// UniformLocation is a resolved uniform slot within a linked program.
type UniformLocation int32

// NoUniform is returned for uniform names the linked program does not use.
// Writing to it is a no-op.
const NoUniform UniformLocation = -1

type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type Capability int

const (
	DepthTest Capability = iota
	CullFace
)

// Context is the subset of the OpenGL API used by the core. The real
// implementation lives in internal/opengl; tests use gputest.Context.
type Context interface {
	GenVertexArray() VertexArray
	BindVertexArray(vao VertexArray)
	DeleteVertexArray(vao VertexArray)

	GenBuffer() Buffer
	BindBuffer(target BufferTarget, buf Buffer)
	// BufferFloats uploads static float data to the buffer bound to target.
	BufferFloats(target BufferTarget, data []float32)
	// BufferIndices uploads static index data to the bound element buffer.
	BufferIndices(data []uint32)
	// VertexAttribPointer describes tightly packed floats of the given
	// component count in the bound array buffer.
	VertexAttribPointer(slot uint32, size int32)
	EnableVertexAttribArray(slot uint32)
	DisableVertexAttribArray(slot uint32)
	DeleteBuffer(buf Buffer)

	GenTexture() Texture
	ActiveTexture(unit uint32)
	BindTexture(tex Texture)
	// TexImage2D uploads RGBA8 pixels to the bound 2D texture.
	TexImage2D(width, height int, pixels []byte)
	// GenerateMipmap builds the mip chain of the bound texture, selects
	// trilinear minification and applies lodBias.
	GenerateMipmap(lodBias float32)
	DeleteTexture(tex Texture)

	CompileShader(stage ShaderStage, source string) (Shader, error)
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	BindAttribLocation(p Program, slot uint32, name string)
	LinkProgram(p Program) error
	UseProgram(p Program)
	DeleteProgram(p Program)
	GetUniformLocation(p Program, name string) UniformLocation

	Uniform1f(loc UniformLocation, v float32)
	Uniform1i(loc UniformLocation, v int32)
	Uniform2f(loc UniformLocation, x, y float32)
	Uniform3f(loc UniformLocation, x, y, z float32)
	UniformMatrix4(loc UniformLocation, m math.Mat4)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	// Clear clears the color and depth buffers.
	Clear()
	Enable(c Capability)
	Disable(c Capability)
	// CullBackFaces selects back-face culling for when CullFace is enabled.
	CullBackFaces()
	// DrawTriangles issues an indexed triangle draw of count uint32 indices
	// from the bound vertex array.
	DrawTriangles(count int32)
}
