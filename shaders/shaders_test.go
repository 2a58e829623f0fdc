package shaders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrain-renderer/internal/gpu"
	"terrain-renderer/internal/gpu/gputest"
	"terrain-renderer/math"
)

type fixedView struct {
	pos        math.Vec3
	pitch, yaw float32
}

func (v fixedView) Position() math.Vec3 { return v.pos }
func (v fixedView) Pitch() float32      { return v.pitch }
func (v fixedView) Yaw() float32        { return v.yaw }

func TestEmbeddedSources(t *testing.T) {
	for _, src := range []string{entityVertexSource, entityFragmentSource, terrainVertexSource, terrainFragmentSource} {
		assert.Contains(t, src, "#version 410 core")
	}
	for _, name := range entityConfig().Uniforms {
		assert.Contains(t, entityVertexSource+entityFragmentSource, name)
	}
	for _, name := range terrainConfig().Uniforms {
		assert.Contains(t, terrainVertexSource+terrainFragmentSource, name)
	}
}

func TestNewProgramBindsAttributesAndResolvesUniforms(t *testing.T) {
	ctx := gputest.New()
	s, err := NewEntityShader(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]uint32{"position": 0, "textureCoordinates": 1, "normal": 2}, ctx.Bindings[s.ID()])
	for _, name := range entityConfig().Uniforms {
		assert.NotEqual(t, gpu.NoUniform, s.Location(name), name)
	}
	assert.Equal(t, gpu.NoUniform, s.Location("blendMap"))
	assert.Equal(t, "entity", s.Name())
}

func TestStartStop(t *testing.T) {
	ctx := gputest.New()
	s, err := NewTerrainShader(ctx)
	require.NoError(t, err)

	s.Start()
	assert.True(t, s.Active())
	assert.Equal(t, s.ID(), ctx.ActiveProgram)
	s.Stop()
	assert.False(t, s.Active())
	assert.Zero(t, ctx.ActiveProgram)
}

func TestTypedLoaders(t *testing.T) {
	ctx := gputest.New()
	s, err := NewEntityShader(ctx)
	require.NoError(t, err)

	s.Start()
	s.LoadFakeLighting(true)
	s.LoadNumberOfRows(2)
	s.LoadOffset(0.5, 0)
	s.LoadShineVariables(10, 1)
	s.LoadLight(math.NewVec3(1, 2, 3), math.Vec3One)
	s.LoadSkyColour(math.NewVec3(0.5, 0.5, 0.5))
	m := math.TransformationMatrix(math.NewVec3(1, 0, 0), 0, 0, 0, 1)
	s.LoadTransformationMatrix(m)
	s.LoadViewMatrix(fixedView{pos: math.NewVec3(0, 0, 5)})
	s.Stop()

	u := func(name string) any {
		v, ok := ctx.Uniform(s.ID(), name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, float32(1), u("useFakeLighting"))
	assert.Equal(t, float32(2), u("numberOfRows"))
	assert.Equal(t, [2]float32{0.5, 0}, u("offset"))
	assert.Equal(t, float32(10), u("shineDamper"))
	assert.Equal(t, float32(1), u("reflectivity"))
	assert.Equal(t, [3]float32{1, 2, 3}, u("lightPosition"))
	assert.Equal(t, [3]float32{1, 1, 1}, u("lightColour"))
	assert.Equal(t, m, u("transformationMatrix"))
	view := u("viewMatrix").(math.Mat4)
	assert.InDelta(t, -5, view.At(2, 3), 1e-6)
	assert.Empty(t, ctx.Errors)
}

func TestUnknownUniformIsNoop(t *testing.T) {
	ctx := gputest.New()
	ctx.MissingUniforms["useFakeLighting"] = true
	s, err := NewEntityShader(ctx)
	require.NoError(t, err)
	assert.Equal(t, gpu.NoUniform, s.Location("useFakeLighting"))

	s.Start()
	before := ctx.Writes
	s.LoadFakeLighting(true)
	s.LoadMatrix(gpu.NoUniform, math.Mat4Identity())
	s.LoadVec3(s.Location("doesNotExist"), math.Vec3One)
	s.Stop()

	assert.Equal(t, before, ctx.Writes)
	assert.Empty(t, ctx.Errors)
}

func TestConnectTextureUnits(t *testing.T) {
	ctx := gputest.New()
	s, err := NewTerrainShader(ctx)
	require.NoError(t, err)

	s.Start()
	s.ConnectTextureUnits()
	s.Stop()
	for unit, name := range terrainSamplers {
		v, ok := ctx.Uniform(s.ID(), name)
		require.True(t, ok)
		assert.Equal(t, int32(unit), v, name)
	}
}

func TestCompileErrorSurfaced(t *testing.T) {
	ctx := gputest.New()
	ctx.FailCompile[gpu.FragmentStage] = "0:12: 'vec5' : undeclared identifier"

	s, err := NewEntityShader(ctx)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrCompile))
	assert.Contains(t, err.Error(), "undeclared identifier")
	assert.Contains(t, err.Error(), "fragment")
	assert.Zero(t, ctx.LiveShaders(), "vertex stage released after fragment failure")
	assert.Zero(t, ctx.LivePrograms())
}

func TestLinkErrorSurfaced(t *testing.T) {
	ctx := gputest.New()
	ctx.FailLink = "varying visibility not written"

	_, err := NewTerrainShader(ctx)
	require.ErrorIs(t, err, ErrLink)
	assert.Contains(t, err.Error(), "visibility")
	assert.Zero(t, ctx.LiveShaders())
	assert.Zero(t, ctx.LivePrograms())
	assert.Empty(t, ctx.Errors)
}

func TestDelete(t *testing.T) {
	ctx := gputest.New()
	s, err := NewEntityShader(ctx)
	require.NoError(t, err)

	s.Start()
	s.Delete()
	s.Delete()
	assert.False(t, s.Active())
	assert.Zero(t, ctx.LivePrograms())
	assert.Zero(t, ctx.LiveShaders())
	assert.Empty(t, ctx.Errors)
}
