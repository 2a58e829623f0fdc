package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrain-renderer/entities"
	"terrain-renderer/internal/gpu"
	"terrain-renderer/internal/gpu/gputest"
	"terrain-renderer/math"
	"terrain-renderer/models"
	"terrain-renderer/resources"
	"terrain-renderer/terrain"
)

type fixedView struct{ pos math.Vec3 }

func (v fixedView) Position() math.Vec3 { return v.pos }
func (v fixedView) Pitch() float32      { return 20 }
func (v fixedView) Yaw() float32        { return 0 }

var (
	light = entities.Light{Position: math.NewVec3(0, 1000, 0), Colour: math.Vec3One}
	view  = fixedView{pos: math.NewVec3(0, 10, 20)}
)

type harness struct {
	t   *testing.T
	ctx *gputest.Context
	mgr *resources.Manager
	r   *MasterRenderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := gputest.New()
	r, err := NewMasterRenderer(ctx, DefaultConfig(), nil)
	require.NoError(t, err)
	return &harness{t: t, ctx: ctx, mgr: resources.NewManager(ctx, nil), r: r}
}

func (h *harness) quad() *resources.Mesh {
	mesh, err := h.mgr.Upload(resources.MeshData{
		Positions: []float32{-1, 1, 0, -1, -1, 0, 1, -1, 0, 1, 1, 0},
		TexCoords: []float32{0, 0, 0, 1, 1, 1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 3, 3, 1, 2},
	})
	require.NoError(h.t, err)
	return mesh
}

func (h *harness) texture() *resources.Texture {
	tex, err := h.mgr.UploadTexture(resources.TextureData{Width: 1, Height: 1, Pixels: []byte{0x20, 0x80, 0x20, 0xff}})
	require.NoError(h.t, err)
	return tex
}

func (h *harness) model() *models.TexturedModel {
	return models.NewTexturedModel(h.quad(), models.NewMaterial(h.texture()))
}

func (h *harness) terrain() *terrain.Terrain {
	pack := terrain.TexturePack{Background: h.texture(), R: h.texture(), G: h.texture(), B: h.texture()}
	ter, err := terrain.New(0, -1, terrain.Flat(3), h.mgr, pack, h.texture())
	require.NoError(h.t, err)
	return ter
}

func TestConstruction(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.ctx.Caps[gpu.CullFace])
	assert.True(t, h.ctx.BackFaceCull)
	assert.Equal(t, [2]int32{1280, 720}, h.ctx.ViewportSize)

	proj, ok := h.ctx.Uniform(h.r.entityShader.ID(), "projectionMatrix")
	require.True(t, ok)
	assert.Equal(t, math.ProjectionMatrix(70, 1280.0/720.0, 0.1, 1000), proj)
	_, ok = h.ctx.Uniform(h.r.terrainShader.ID(), "projectionMatrix")
	assert.True(t, ok)

	for unit, name := range []string{"backgroundTexture", "rTexture", "gTexture", "bTexture", "blendMap"} {
		v, ok := h.ctx.Uniform(h.r.terrainShader.ID(), name)
		require.True(t, ok)
		assert.Equal(t, int32(unit), v)
	}
	assert.Zero(t, h.ctx.ActiveProgram)
	assert.Empty(t, h.ctx.Errors)
}

func TestSingleQuadEndToEnd(t *testing.T) {
	h := newHarness(t)
	tex := h.texture()
	model := models.NewTexturedModel(h.quad(), models.NewMaterial(tex))
	require.NoError(t, h.r.Submit(entities.New(model, math.Vec3Zero, 0, 0, 0, 1)))

	stats := h.r.Render(light, view)
	assert.Equal(t, Stats{Batches: 1, Draws: 1}, stats)
	require.Len(t, h.ctx.Draws, 1)
	d := h.ctx.Draws[0]
	assert.Equal(t, int32(6), d.Count)
	assert.Equal(t, tex.ID(), d.Textures[0])
	assert.Equal(t, model.Mesh.VAO(), d.VAO)
	assert.Equal(t, h.r.entityShader.ID(), d.Program)
	assert.Equal(t, []uint32{0, 1, 2}, d.Attribs)

	assert.Equal(t, 1, h.ctx.Clears)
	assert.True(t, h.ctx.Caps[gpu.DepthTest])
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, h.ctx.Clear4)
	assert.Zero(t, h.ctx.BoundVAO)
	assert.Zero(t, h.ctx.ActiveProgram)
	assert.Empty(t, h.ctx.EnabledAttribs(model.Mesh.VAO()))
	assert.Empty(t, h.ctx.Errors)
}

func TestBatchesAndNoCrossFrameLeakage(t *testing.T) {
	const k, perModel = 3, 4
	h := newHarness(t)

	var modelsInOrder []*models.TexturedModel
	for i := 0; i < k; i++ {
		modelsInOrder = append(modelsInOrder, h.model())
	}
	// Interleave submissions so batching has to regroup them.
	for i := 0; i < perModel; i++ {
		for _, m := range modelsInOrder {
			require.NoError(t, h.r.Submit(entities.New(m, math.NewVec3(float32(i), 0, 0), 0, 0, 0, 1)))
		}
	}

	stats := h.r.Render(light, view)
	assert.Equal(t, k, stats.Batches)
	assert.Equal(t, k*perModel, stats.Draws)
	require.Len(t, h.ctx.Draws, k*perModel)

	// Draws are grouped per model, in first-submission order.
	for i, d := range h.ctx.Draws {
		assert.Equal(t, modelsInOrder[i/perModel].Mesh.VAO(), d.VAO, "draw %d", i)
	}

	h.ctx.ResetFrame()
	stats = h.r.Render(light, view)
	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, h.ctx.Draws)
}

func TestIdentityNotValueDeterminesBatch(t *testing.T) {
	h := newHarness(t)
	mesh, tex := h.quad(), h.texture()
	a := models.NewTexturedModel(mesh, models.NewMaterial(tex))
	b := models.NewTexturedModel(mesh, models.NewMaterial(tex))
	require.Equal(t, *a.Material, *b.Material)

	require.NoError(t, h.r.Submit(entities.New(a, math.Vec3Zero, 0, 0, 0, 1)))
	require.NoError(t, h.r.Submit(entities.New(b, math.Vec3Zero, 0, 0, 0, 1)))
	require.NoError(t, h.r.Submit(entities.New(a, math.Vec3Zero, 0, 0, 0, 1)))

	stats := h.r.Render(light, view)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 3, stats.Draws)
}

func TestInstanceOrderWithinBatch(t *testing.T) {
	h := newHarness(t)
	model := h.model()
	for i := 0; i < 3; i++ {
		require.NoError(t, h.r.Submit(entities.New(model, math.NewVec3(float32(i+1), 0, 0), 0, 0, 0, 1)))
	}

	var xs []float32
	for _, e := range h.r.frame.batches[0].entities {
		xs = append(xs, e.Position.X)
	}
	assert.Equal(t, []float32{1, 2, 3}, xs)

	h.r.Render(light, view)
	m, _ := h.ctx.Uniform(h.r.entityShader.ID(), "transformationMatrix")
	assert.Equal(t, float32(3), m.(math.Mat4).At(0, 3), "last instance drawn last")
}

func TestTransparencyRestoresCulling(t *testing.T) {
	h := newHarness(t)
	glass := h.model()
	glass.Material.HasTransparency = true
	solid := h.model()

	require.NoError(t, h.r.Submit(entities.New(glass, math.Vec3Zero, 0, 0, 0, 1)))
	require.NoError(t, h.r.Submit(entities.New(solid, math.Vec3Zero, 0, 0, 0, 1)))
	h.r.Render(light, view)

	require.Len(t, h.ctx.Draws, 2)
	assert.False(t, h.ctx.Draws[0].Culling, "transparent batch drawn without culling")
	assert.True(t, h.ctx.Draws[1].Culling, "culling restored for the next batch")
	assert.True(t, h.ctx.Caps[gpu.CullFace])
}

func TestMaterialUniforms(t *testing.T) {
	h := newHarness(t)
	fern := h.model()
	fern.Material.NumberOfRows = 2
	fern.Material.UseFakeLighting = true
	fern.Material.ShineDamper = 10
	fern.Material.Reflectivity = 0.5

	require.NoError(t, h.r.Submit(entities.NewAtlas(fern, 3, math.Vec3Zero, 0, 0, 0, 1)))
	h.r.Render(light, view)

	id := h.r.entityShader.ID()
	u := func(name string) any {
		v, ok := h.ctx.Uniform(id, name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, float32(2), u("numberOfRows"))
	assert.Equal(t, float32(1), u("useFakeLighting"))
	assert.Equal(t, float32(10), u("shineDamper"))
	assert.Equal(t, float32(0.5), u("reflectivity"))
	assert.Equal(t, [2]float32{0.5, 0.5}, u("offset"))
	assert.Equal(t, [3]float32{0, 1000, 0}, u("lightPosition"))
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, u("skyColour"))
	assert.Equal(t, math.ViewMatrix(view), u("viewMatrix"))
}

func TestTerrainDraw(t *testing.T) {
	h := newHarness(t)
	ter := h.terrain()
	require.NoError(t, h.r.SubmitTerrain(ter))

	stats := h.r.Render(light, view)
	assert.Equal(t, Stats{TerrainDraws: 1}, stats)
	require.Len(t, h.ctx.Draws, 1)
	d := h.ctx.Draws[0]
	assert.Equal(t, h.r.terrainShader.ID(), d.Program)
	assert.Equal(t, ter.Mesh.IndexCount(), d.Count)
	for unit, tex := range ter.Textures() {
		assert.Equal(t, tex.ID(), d.Textures[uint32(unit)], "unit %d", unit)
	}

	id := h.r.terrainShader.ID()
	m, _ := h.ctx.Uniform(id, "transformationMatrix")
	assert.Equal(t, math.TransformationMatrix(math.NewVec3(0, 0, -terrain.Size), 0, 0, 0, 1), m)
	damper, _ := h.ctx.Uniform(id, "shineDamper")
	refl, _ := h.ctx.Uniform(id, "reflectivity")
	assert.Equal(t, float32(1), damper)
	assert.Equal(t, float32(0), refl)

	h.ctx.ResetFrame()
	assert.Equal(t, Stats{}, h.r.Render(light, view))
	assert.Empty(t, h.ctx.Draws)
	assert.Empty(t, h.ctx.Errors)
}

func TestEntitiesDrawnBeforeTerrain(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.r.SubmitTerrain(h.terrain()))
	require.NoError(t, h.r.Submit(entities.New(h.model(), math.Vec3Zero, 0, 0, 0, 1)))
	h.r.Render(light, view)

	require.Len(t, h.ctx.Draws, 2)
	assert.Equal(t, h.r.entityShader.ID(), h.ctx.Draws[0].Program)
	assert.Equal(t, h.r.terrainShader.ID(), h.ctx.Draws[1].Program)
}

func TestSubmitRejectsUnuploaded(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.r.Submit(nil), ErrNotUploaded)
	assert.ErrorIs(t, h.r.Submit(entities.New(nil, math.Vec3Zero, 0, 0, 0, 1)), ErrNotUploaded)
	assert.ErrorIs(t, h.r.Submit(entities.New(models.NewTexturedModel(h.quad(), models.NewMaterial(nil)), math.Vec3Zero, 0, 0, 0, 1)), ErrNotUploaded)
	assert.ErrorIs(t, h.r.SubmitTerrain(nil), ErrNotUploaded)

	model, ter := h.model(), h.terrain()
	h.mgr.Teardown()
	assert.ErrorIs(t, h.r.Submit(entities.New(model, math.Vec3Zero, 0, 0, 0, 1)), ErrNotUploaded)
	assert.ErrorIs(t, h.r.SubmitTerrain(ter), ErrNotUploaded)

	assert.Equal(t, Stats{}, h.r.Render(light, view))
	assert.Empty(t, h.ctx.Draws)
}

func TestResize(t *testing.T) {
	h := newHarness(t)
	h.r.Resize(800, 800)
	assert.Equal(t, [2]int32{800, 800}, h.ctx.ViewportSize)
	proj, _ := h.ctx.Uniform(h.r.entityShader.ID(), "projectionMatrix")
	assert.Equal(t, math.ProjectionMatrix(70, 1, 0.1, 1000), proj)

	h.r.Resize(0, 10)
	assert.Equal(t, 800, h.r.Config().Width)
}

func TestSetSkyColour(t *testing.T) {
	h := newHarness(t)
	sky := math.NewVec3(0.1, 0.2, 0.9)
	h.r.SetSkyColour(sky)
	h.r.Render(light, view)

	assert.Equal(t, [4]float32{0.1, 0.2, 0.9, 1}, h.ctx.Clear4)
	got, ok := h.ctx.Uniform(h.r.terrainShader.ID(), "skyColour")
	require.True(t, ok)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.9}, got)
}

func TestCleanup(t *testing.T) {
	h := newHarness(t)
	h.r.Cleanup()
	assert.Zero(t, h.ctx.LivePrograms())
	assert.Zero(t, h.ctx.LiveShaders())
	assert.Empty(t, h.ctx.Errors)
}
