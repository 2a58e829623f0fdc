// Package opengl implements gpu.Context on top of go-gl.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
)

// Context forwards gpu.Context calls to the current OpenGL context.
type Context struct {
	Version string
}

var _ gpu.Context = (*Context)(nil)

// NewContext loads the GL function pointers.
// Must be called after the GLFW window context is made current.
func NewContext(log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	c := &Context{Version: gl.GoStr(gl.GetString(gl.VERSION))}
	log.Info("opengl context ready",
		zap.String("version", c.Version),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return c, nil
}

func cstr(s string) *uint8 {
	if !strings.HasSuffix(s, "\x00") {
		s += "\x00"
	}
	return gl.Str(s)
}

func target(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func capability(c gpu.Capability) uint32 {
	if c == gpu.CullFace {
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func (*Context) GenVertexArray() gpu.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gpu.VertexArray(vao)
}

func (*Context) BindVertexArray(vao gpu.VertexArray) { gl.BindVertexArray(uint32(vao)) }

func (*Context) DeleteVertexArray(vao gpu.VertexArray) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

func (*Context) GenBuffer() gpu.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return gpu.Buffer(buf)
}

func (*Context) BindBuffer(t gpu.BufferTarget, buf gpu.Buffer) { gl.BindBuffer(target(t), uint32(buf)) }

func (*Context) BufferFloats(t gpu.BufferTarget, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(target(t), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (*Context) BufferIndices(data []uint32) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (*Context) VertexAttribPointer(slot uint32, size int32) {
	gl.VertexAttribPointerWithOffset(slot, size, gl.FLOAT, false, 0, 0)
}

func (*Context) EnableVertexAttribArray(slot uint32)  { gl.EnableVertexAttribArray(slot) }
func (*Context) DisableVertexAttribArray(slot uint32) { gl.DisableVertexAttribArray(slot) }

func (*Context) DeleteBuffer(buf gpu.Buffer) {
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

func (*Context) GenTexture() gpu.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	return gpu.Texture(id)
}

func (*Context) ActiveTexture(unit uint32)   { gl.ActiveTexture(gl.TEXTURE0 + unit) }
func (*Context) BindTexture(tex gpu.Texture) { gl.BindTexture(gl.TEXTURE_2D, uint32(tex)) }

func (*Context) TexImage2D(width, height int, pixels []byte) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&pixels[0]),
	)
}

func (*Context) GenerateMipmap(lodBias float32) {
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_LOD_BIAS, lodBias)
}

func (*Context) DeleteTexture(tex gpu.Texture) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

func (*Context) CompileShader(stage gpu.ShaderStage, src string) (gpu.Shader, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return gpu.Shader(shader), nil
}

func (*Context) DeleteShader(s gpu.Shader)  { gl.DeleteShader(uint32(s)) }
func (*Context) CreateProgram() gpu.Program { return gpu.Program(gl.CreateProgram()) }

func (*Context) AttachShader(p gpu.Program, s gpu.Shader) { gl.AttachShader(uint32(p), uint32(s)) }
func (*Context) DetachShader(p gpu.Program, s gpu.Shader) { gl.DetachShader(uint32(p), uint32(s)) }

func (*Context) BindAttribLocation(p gpu.Program, slot uint32, name string) {
	gl.BindAttribLocation(uint32(p), slot, cstr(name))
}

func (*Context) LinkProgram(p gpu.Program) error {
	prog := uint32(p)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return nil
}

func (*Context) UseProgram(p gpu.Program)    { gl.UseProgram(uint32(p)) }
func (*Context) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }

func (*Context) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), cstr(name)))
}

func (*Context) Uniform1f(loc gpu.UniformLocation, v float32) { gl.Uniform1f(int32(loc), v) }
func (*Context) Uniform1i(loc gpu.UniformLocation, v int32)   { gl.Uniform1i(int32(loc), v) }

func (*Context) Uniform2f(loc gpu.UniformLocation, x, y float32) { gl.Uniform2f(int32(loc), x, y) }

func (*Context) Uniform3f(loc gpu.UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

// mgl32 matrices are column-major, matching GL, so no transpose.
func (*Context) UniformMatrix4(loc gpu.UniformLocation, m math.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (*Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (*Context) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (*Context) Clear()                             { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }
func (*Context) Enable(c gpu.Capability)            { gl.Enable(capability(c)) }
func (*Context) Disable(c gpu.Capability)           { gl.Disable(capability(c)) }
func (*Context) CullBackFaces()                     { gl.CullFace(gl.BACK) }

func (*Context) DrawTriangles(count int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, 0)
}
