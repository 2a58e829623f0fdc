package shaders

import (
	_ "embed"

	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
	"terrain-renderer/resources"
)

var (
	//go:embed glsl/entity.vert
	entityVertexSource string
	//go:embed glsl/entity.frag
	entityFragmentSource string
	//go:embed glsl/terrain.vert
	terrainVertexSource string
	//go:embed glsl/terrain.frag
	terrainFragmentSource string
)

var meshAttributes = []Attribute{
	{Slot: resources.PositionSlot, Name: "position"},
	{Slot: resources.TexCoordSlot, Name: "textureCoordinates"},
	{Slot: resources.NormalSlot, Name: "normal"},
}

var sceneUniforms = []string{
	"transformationMatrix",
	"projectionMatrix",
	"viewMatrix",
	"lightPosition",
	"lightColour",
	"shineDamper",
	"reflectivity",
	"skyColour",
}

// Terrain sampler uniforms in texture-unit order.
var terrainSamplers = []string{
	"backgroundTexture",
	"rTexture",
	"gTexture",
	"bTexture",
	"blendMap",
}

func entityConfig() Config {
	return Config{
		Name:           "entity",
		VertexSource:   entityVertexSource,
		FragmentSource: entityFragmentSource,
		Attributes:     meshAttributes,
		Uniforms:       append(append([]string{}, sceneUniforms...), "useFakeLighting", "numberOfRows", "offset"),
	}
}

func terrainConfig() Config {
	return Config{
		Name:           "terrain",
		VertexSource:   terrainVertexSource,
		FragmentSource: terrainFragmentSource,
		Attributes:     meshAttributes,
		Uniforms:       append(append([]string{}, sceneUniforms...), terrainSamplers...),
	}
}

// scene holds the uniforms both variants share.
type scene struct {
	prog *Program

	transformation gpu.UniformLocation
	projection     gpu.UniformLocation
	view           gpu.UniformLocation
	lightPosition  gpu.UniformLocation
	lightColour    gpu.UniformLocation
	shineDamper    gpu.UniformLocation
	reflectivity   gpu.UniformLocation
	skyColour      gpu.UniformLocation
}

func newScene(p *Program) scene {
	return scene{
		prog:           p,
		transformation: p.Location("transformationMatrix"),
		projection:     p.Location("projectionMatrix"),
		view:           p.Location("viewMatrix"),
		lightPosition:  p.Location("lightPosition"),
		lightColour:    p.Location("lightColour"),
		shineDamper:    p.Location("shineDamper"),
		reflectivity:   p.Location("reflectivity"),
		skyColour:      p.Location("skyColour"),
	}
}

func (s scene) LoadTransformationMatrix(m math.Mat4) { s.prog.LoadMatrix(s.transformation, m) }
func (s scene) LoadProjectionMatrix(m math.Mat4)     { s.prog.LoadMatrix(s.projection, m) }

// LoadViewMatrix derives the view matrix from v.
func (s scene) LoadViewMatrix(v math.Viewer) { s.prog.LoadMatrix(s.view, math.ViewMatrix(v)) }

func (s scene) LoadLight(position, colour math.Vec3) {
	s.prog.LoadVec3(s.lightPosition, position)
	s.prog.LoadVec3(s.lightColour, colour)
}

func (s scene) LoadShineVariables(damper, reflectivity float32) {
	s.prog.LoadFloat(s.shineDamper, damper)
	s.prog.LoadFloat(s.reflectivity, reflectivity)
}

func (s scene) LoadSkyColour(c math.Vec3) { s.prog.LoadVec3(s.skyColour, c) }

// EntityShader draws textured models with optional atlas sub-images and
// fake lighting.
type EntityShader struct {
	*Program
	scene

	fakeLighting gpu.UniformLocation
	numberOfRows gpu.UniformLocation
	offset       gpu.UniformLocation
}

func NewEntityShader(ctx gpu.Context) (*EntityShader, error) {
	p, err := NewProgram(ctx, entityConfig())
	if err != nil {
		return nil, err
	}
	return &EntityShader{
		Program:      p,
		scene:        newScene(p),
		fakeLighting: p.Location("useFakeLighting"),
		numberOfRows: p.Location("numberOfRows"),
		offset:       p.Location("offset"),
	}, nil
}

func (s *EntityShader) LoadFakeLighting(use bool) { s.LoadBool(s.fakeLighting, use) }

func (s *EntityShader) LoadNumberOfRows(rows int) { s.LoadFloat(s.numberOfRows, float32(rows)) }

func (s *EntityShader) LoadOffset(x, y float32) { s.LoadVec2(s.offset, math.NewVec2(x, y)) }

// TerrainShader blends four detail textures through a blend map.
type TerrainShader struct {
	*Program
	scene

	samplers [5]gpu.UniformLocation
}

func NewTerrainShader(ctx gpu.Context) (*TerrainShader, error) {
	p, err := NewProgram(ctx, terrainConfig())
	if err != nil {
		return nil, err
	}
	s := &TerrainShader{Program: p, scene: newScene(p)}
	for i, name := range terrainSamplers {
		s.samplers[i] = p.Location(name)
	}
	return s, nil
}

// ConnectTextureUnits points the five samplers at texture units 0-4:
// background, r, g, b, blend map. Call once while the program is started.
func (s *TerrainShader) ConnectTextureUnits() {
	for unit, loc := range s.samplers {
		s.LoadInt(loc, int32(unit))
	}
}
