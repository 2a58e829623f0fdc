// Package shaders wraps linked GPU programs with a start/stop binding scope
// and typed uniform loaders resolved once at construction.
package shaders

import (
	"errors"
	"fmt"

	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
)

var (
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("shader link failed")
)

// Attribute binds a vertex attribute name to a fixed slot before linking.
type Attribute struct {
	Slot uint32
	Name string
}

// Config describes one program variant: its stage sources, the attribute
// bindings it needs and every uniform name it resolves.
type Config struct {
	Name           string
	VertexSource   string
	FragmentSource string
	Attributes     []Attribute
	Uniforms       []string
}

// Program is a compiled and linked shader program.
type Program struct {
	ctx  gpu.Context
	name string

	id       gpu.Program
	vertex   gpu.Shader
	fragment gpu.Shader

	locations map[string]gpu.UniformLocation
	active    bool
}

// NewProgram compiles both stages, binds cfg.Attributes, links and
// resolves cfg.Uniforms. Compile and link failures carry the driver log.
func NewProgram(ctx gpu.Context, cfg Config) (*Program, error) {
	vert, err := ctx.CompileShader(gpu.VertexStage, cfg.VertexSource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (%s stage): %v", cfg.Name, ErrCompile, gpu.VertexStage, err)
	}
	frag, err := ctx.CompileShader(gpu.FragmentStage, cfg.FragmentSource)
	if err != nil {
		ctx.DeleteShader(vert)
		return nil, fmt.Errorf("%s: %w (%s stage): %v", cfg.Name, ErrCompile, gpu.FragmentStage, err)
	}

	id := ctx.CreateProgram()
	ctx.AttachShader(id, vert)
	ctx.AttachShader(id, frag)
	for _, a := range cfg.Attributes {
		ctx.BindAttribLocation(id, a.Slot, a.Name)
	}
	if err := ctx.LinkProgram(id); err != nil {
		ctx.DetachShader(id, vert)
		ctx.DetachShader(id, frag)
		ctx.DeleteShader(vert)
		ctx.DeleteShader(frag)
		ctx.DeleteProgram(id)
		return nil, fmt.Errorf("%s: %w: %v", cfg.Name, ErrLink, err)
	}

	p := &Program{
		ctx:       ctx,
		name:      cfg.Name,
		id:        id,
		vertex:    vert,
		fragment:  frag,
		locations: make(map[string]gpu.UniformLocation, len(cfg.Uniforms)),
	}
	for _, name := range cfg.Uniforms {
		p.locations[name] = ctx.GetUniformLocation(id, name)
	}
	return p, nil
}

func (p *Program) Name() string    { return p.name }
func (p *Program) ID() gpu.Program { return p.id }
func (p *Program) Active() bool    { return p.active }

// Location returns the location resolved for name at construction, or
// gpu.NoUniform if the program does not use it.
func (p *Program) Location(name string) gpu.UniformLocation {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return gpu.NoUniform
}

// Start makes p the active program. Uniform loads, texture binds and draws
// belong between Start and Stop.
func (p *Program) Start() {
	p.ctx.UseProgram(p.id)
	p.active = true
}

func (p *Program) Stop() {
	p.ctx.UseProgram(0)
	p.active = false
}

// Delete releases both stages and the program.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	if p.active {
		p.Stop()
	}
	p.ctx.DetachShader(p.id, p.vertex)
	p.ctx.DetachShader(p.id, p.fragment)
	p.ctx.DeleteShader(p.vertex)
	p.ctx.DeleteShader(p.fragment)
	p.ctx.DeleteProgram(p.id)
	p.id, p.vertex, p.fragment = 0, 0, 0
}

// ── Typed loaders ─────────────────────────────────────────────────────────────
// Each is a no-op for gpu.NoUniform.

func (p *Program) LoadFloat(loc gpu.UniformLocation, v float32) {
	if loc != gpu.NoUniform {
		p.ctx.Uniform1f(loc, v)
	}
}

func (p *Program) LoadInt(loc gpu.UniformLocation, v int32) {
	if loc != gpu.NoUniform {
		p.ctx.Uniform1i(loc, v)
	}
}

// LoadBool encodes v as 1 or 0 in a float uniform.
func (p *Program) LoadBool(loc gpu.UniformLocation, v bool) {
	var f float32
	if v {
		f = 1
	}
	p.LoadFloat(loc, f)
}

func (p *Program) LoadVec2(loc gpu.UniformLocation, v math.Vec2) {
	if loc != gpu.NoUniform {
		p.ctx.Uniform2f(loc, v.X, v.Y)
	}
}

func (p *Program) LoadVec3(loc gpu.UniformLocation, v math.Vec3) {
	if loc != gpu.NoUniform {
		p.ctx.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

func (p *Program) LoadMatrix(loc gpu.UniformLocation, m math.Mat4) {
	if loc != gpu.NoUniform {
		p.ctx.UniformMatrix4(loc, m)
	}
}
