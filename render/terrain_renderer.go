package render

import (
	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
	"terrain-renderer/shaders"
	"terrain-renderer/terrain"
)

// TerrainRenderer draws terrain tiles. The terrain shader must be started.
type TerrainRenderer struct {
	ctx    gpu.Context
	shader *shaders.TerrainShader
}

func NewTerrainRenderer(ctx gpu.Context, shader *shaders.TerrainShader) *TerrainRenderer {
	return &TerrainRenderer{ctx: ctx, shader: shader}
}

// Render draws each tile once and returns the number of draw calls.
func (r *TerrainRenderer) Render(tiles []*terrain.Terrain) int {
	for _, t := range tiles {
		r.prepareTerrain(t)
		r.loadModelMatrix(t)
		r.ctx.DrawTriangles(t.Mesh.IndexCount())
		unbindMesh(r.ctx)
	}
	return len(tiles)
}

func (r *TerrainRenderer) prepareTerrain(t *terrain.Terrain) {
	bindMesh(r.ctx, t.Mesh)
	for unit, tex := range t.Textures() {
		r.ctx.ActiveTexture(uint32(unit))
		r.ctx.BindTexture(tex.ID())
	}
	r.shader.LoadShineVariables(1, 0)
}

func (r *TerrainRenderer) loadModelMatrix(t *terrain.Terrain) {
	x, z := t.GridOffset()
	r.shader.LoadTransformationMatrix(math.TransformationMatrix(math.NewVec3(x, 0, z), 0, 0, 0, 1))
}
