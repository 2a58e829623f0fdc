// Package gputest provides a recording gpu.Context for tests. It tracks
// handle lifetimes and every state change the renderer makes so tests can
// assert on draws, bindings and uniform writes without a driver.
package gputest

import (
	"fmt"
	"sort"

	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
)

type handleKind int

const (
	kindVAO handleKind = iota
	kindBuffer
	kindTexture
	kindProgram
	kindShader
)

func (k handleKind) String() string {
	return [...]string{"vao", "buffer", "texture", "program", "shader"}[k]
}

// Draw is one recorded DrawTriangles call with the state it was issued under.
type Draw struct {
	VAO      gpu.VertexArray
	Count    int32
	Program  gpu.Program
	Textures map[uint32]gpu.Texture
	Culling  bool
	Attribs  []uint32
}

// Context records calls made through gpu.Context.
type Context struct {
	next   uint32
	live   map[handleKind]map[uint32]bool
	gen    map[handleKind]int
	del    map[handleKind]int
	Errors []string // lifecycle violations: double delete, use after delete

	BoundVAO      gpu.VertexArray
	ActiveProgram gpu.Program
	activeUnit    uint32
	Units         map[uint32]gpu.Texture
	Caps          map[gpu.Capability]bool
	attribs       map[gpu.VertexArray]map[uint32]bool
	BackFaceCull  bool
	Clears        int
	Clear4        [4]float32
	ViewportSize  [2]int32
	Mipmaps       int
	LodBias       float32

	Draws []Draw

	// Uniforms[program][name] holds the last value written. Values are
	// float32, int32, [2]float32, [3]float32 or math.Mat4.
	Uniforms map[gpu.Program]map[string]any
	Writes   int

	// MissingUniforms lists names reported as unused by every program.
	MissingUniforms map[string]bool
	FailCompile     map[gpu.ShaderStage]string
	FailLink        string

	locs     map[gpu.UniformLocation]uniformRef
	nextLoc  gpu.UniformLocation
	attached map[gpu.Program][]gpu.Shader
	Bindings map[gpu.Program]map[string]uint32
}

type uniformRef struct {
	program gpu.Program
	name    string
}

var _ gpu.Context = (*Context)(nil)

func New() *Context {
	c := &Context{
		live:            map[handleKind]map[uint32]bool{},
		gen:             map[handleKind]int{},
		del:             map[handleKind]int{},
		Units:           map[uint32]gpu.Texture{},
		Caps:            map[gpu.Capability]bool{},
		attribs:         map[gpu.VertexArray]map[uint32]bool{},
		Uniforms:        map[gpu.Program]map[string]any{},
		MissingUniforms: map[string]bool{},
		FailCompile:     map[gpu.ShaderStage]string{},
		locs:            map[gpu.UniformLocation]uniformRef{},
		attached:        map[gpu.Program][]gpu.Shader{},
		Bindings:        map[gpu.Program]map[string]uint32{},
	}
	for _, k := range []handleKind{kindVAO, kindBuffer, kindTexture, kindProgram, kindShader} {
		c.live[k] = map[uint32]bool{}
	}
	return c
}

func (c *Context) alloc(k handleKind) uint32 {
	c.next++
	c.live[k][c.next] = true
	c.gen[k]++
	return c.next
}

func (c *Context) free(k handleKind, h uint32) {
	if h == 0 {
		return
	}
	if !c.live[k][h] {
		c.Errors = append(c.Errors, fmt.Sprintf("delete of dead %s %d", k, h))
		return
	}
	delete(c.live[k], h)
	c.del[k]++
}

func (c *Context) use(k handleKind, h uint32) {
	if h != 0 && !c.live[k][h] {
		c.Errors = append(c.Errors, fmt.Sprintf("use of dead %s %d", k, h))
	}
}

// Live counts handles generated and not yet deleted.
func (c *Context) LiveVAOs() int     { return len(c.live[kindVAO]) }
func (c *Context) LiveBuffers() int  { return len(c.live[kindBuffer]) }
func (c *Context) LiveTextures() int { return len(c.live[kindTexture]) }
func (c *Context) LivePrograms() int { return len(c.live[kindProgram]) }
func (c *Context) LiveShaders() int  { return len(c.live[kindShader]) }

func (c *Context) DeletedVAOs() int     { return c.del[kindVAO] }
func (c *Context) DeletedBuffers() int  { return c.del[kindBuffer] }
func (c *Context) DeletedTextures() int { return c.del[kindTexture] }
func (c *Context) DeletedPrograms() int { return c.del[kindProgram] }

func (c *Context) GenVertexArray() gpu.VertexArray { return gpu.VertexArray(c.alloc(kindVAO)) }
func (c *Context) BindVertexArray(vao gpu.VertexArray) {
	c.use(kindVAO, uint32(vao))
	c.BoundVAO = vao
}
func (c *Context) DeleteVertexArray(vao gpu.VertexArray) {
	c.free(kindVAO, uint32(vao))
	if c.BoundVAO == vao {
		c.BoundVAO = 0
	}
}

func (c *Context) GenBuffer() gpu.Buffer                         { return gpu.Buffer(c.alloc(kindBuffer)) }
func (c *Context) BindBuffer(_ gpu.BufferTarget, buf gpu.Buffer) { c.use(kindBuffer, uint32(buf)) }
func (c *Context) BufferFloats(_ gpu.BufferTarget, _ []float32)  {}
func (c *Context) BufferIndices(_ []uint32)                      {}
func (c *Context) VertexAttribPointer(_ uint32, _ int32)         {}
func (c *Context) DeleteBuffer(buf gpu.Buffer)                   { c.free(kindBuffer, uint32(buf)) }

func (c *Context) EnableVertexAttribArray(slot uint32) {
	m := c.attribs[c.BoundVAO]
	if m == nil {
		m = map[uint32]bool{}
		c.attribs[c.BoundVAO] = m
	}
	m[slot] = true
}

func (c *Context) DisableVertexAttribArray(slot uint32) {
	delete(c.attribs[c.BoundVAO], slot)
}

// EnabledAttribs returns the sorted attribute slots enabled on vao.
func (c *Context) EnabledAttribs(vao gpu.VertexArray) []uint32 {
	var out []uint32
	for s := range c.attribs[vao] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Context) GenTexture() gpu.Texture       { return gpu.Texture(c.alloc(kindTexture)) }
func (c *Context) ActiveTexture(unit uint32)     { c.activeUnit = unit }
func (c *Context) TexImage2D(_, _ int, _ []byte) {}
func (c *Context) BindTexture(tex gpu.Texture) {
	c.use(kindTexture, uint32(tex))
	c.Units[c.activeUnit] = tex
}

func (c *Context) GenerateMipmap(lodBias float32) {
	c.Mipmaps++
	c.LodBias = lodBias
}
func (c *Context) DeleteTexture(tex gpu.Texture) {
	c.free(kindTexture, uint32(tex))
	for u, t := range c.Units {
		if t == tex {
			delete(c.Units, u)
		}
	}
}

func (c *Context) CompileShader(stage gpu.ShaderStage, _ string) (gpu.Shader, error) {
	if msg, ok := c.FailCompile[stage]; ok {
		return 0, fmt.Errorf("%s", msg)
	}
	return gpu.Shader(c.alloc(kindShader)), nil
}
func (c *Context) DeleteShader(s gpu.Shader) { c.free(kindShader, uint32(s)) }
func (c *Context) CreateProgram() gpu.Program {
	p := gpu.Program(c.alloc(kindProgram))
	c.Uniforms[p] = map[string]any{}
	c.Bindings[p] = map[string]uint32{}
	return p
}
func (c *Context) AttachShader(p gpu.Program, s gpu.Shader) {
	c.use(kindShader, uint32(s))
	c.attached[p] = append(c.attached[p], s)
}
func (c *Context) DetachShader(p gpu.Program, s gpu.Shader) {
	list := c.attached[p]
	for i, a := range list {
		if a == s {
			c.attached[p] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
func (c *Context) BindAttribLocation(p gpu.Program, slot uint32, name string) {
	c.Bindings[p][name] = slot
}
func (c *Context) LinkProgram(_ gpu.Program) error {
	if c.FailLink != "" {
		return fmt.Errorf("%s", c.FailLink)
	}
	return nil
}
func (c *Context) UseProgram(p gpu.Program) {
	c.use(kindProgram, uint32(p))
	c.ActiveProgram = p
}
func (c *Context) DeleteProgram(p gpu.Program) {
	c.free(kindProgram, uint32(p))
	if c.ActiveProgram == p {
		c.ActiveProgram = 0
	}
}

func (c *Context) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if c.MissingUniforms[name] {
		return gpu.NoUniform
	}
	loc := c.nextLoc
	c.nextLoc++
	c.locs[loc] = uniformRef{program: p, name: name}
	return loc
}

func (c *Context) set(loc gpu.UniformLocation, v any) {
	if loc == gpu.NoUniform {
		c.Errors = append(c.Errors, "write to NoUniform")
		return
	}
	ref, ok := c.locs[loc]
	if !ok {
		c.Errors = append(c.Errors, fmt.Sprintf("write to unknown location %d", loc))
		return
	}
	if ref.program != c.ActiveProgram {
		c.Errors = append(c.Errors, fmt.Sprintf("uniform %q written while program %d inactive", ref.name, ref.program))
	}
	c.Uniforms[ref.program][ref.name] = v
	c.Writes++
}

func (c *Context) Uniform1f(loc gpu.UniformLocation, v float32)        { c.set(loc, v) }
func (c *Context) Uniform1i(loc gpu.UniformLocation, v int32)          { c.set(loc, v) }
func (c *Context) Uniform2f(loc gpu.UniformLocation, x, y float32)     { c.set(loc, [2]float32{x, y}) }
func (c *Context) Uniform3f(loc gpu.UniformLocation, x, y, z float32)  { c.set(loc, [3]float32{x, y, z}) }
func (c *Context) UniformMatrix4(loc gpu.UniformLocation, m math.Mat4) { c.set(loc, m) }

func (c *Context) Viewport(_, _, w, h int32)     { c.ViewportSize = [2]int32{w, h} }
func (c *Context) ClearColor(r, g, b, a float32) { c.Clear4 = [4]float32{r, g, b, a} }
func (c *Context) Clear()                        { c.Clears++ }
func (c *Context) Enable(cp gpu.Capability)      { c.Caps[cp] = true }
func (c *Context) Disable(cp gpu.Capability)     { c.Caps[cp] = false }
func (c *Context) CullBackFaces()                { c.BackFaceCull = true }

func (c *Context) DrawTriangles(count int32) {
	c.use(kindVAO, uint32(c.BoundVAO))
	if c.ActiveProgram == 0 {
		c.Errors = append(c.Errors, "draw with no active program")
	}
	if c.BoundVAO == 0 {
		c.Errors = append(c.Errors, "draw with no vertex array bound")
	}
	units := make(map[uint32]gpu.Texture, len(c.Units))
	for u, t := range c.Units {
		units[u] = t
	}
	c.Draws = append(c.Draws, Draw{
		VAO:      c.BoundVAO,
		Count:    count,
		Program:  c.ActiveProgram,
		Textures: units,
		Culling:  c.Caps[gpu.CullFace],
		Attribs:  c.EnabledAttribs(c.BoundVAO),
	})
}

// Uniform returns the last value written to name in program p.
func (c *Context) Uniform(p gpu.Program, name string) (any, bool) {
	v, ok := c.Uniforms[p][name]
	return v, ok
}

// ResetFrame discards recorded draws.
func (c *Context) ResetFrame() { c.Draws = nil }
