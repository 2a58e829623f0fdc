package render

import (
	"terrain-renderer/entities"
	"terrain-renderer/internal/gpu"
	"terrain-renderer/models"
	"terrain-renderer/resources"
	"terrain-renderer/shaders"
)

var meshSlots = [...]uint32{resources.PositionSlot, resources.TexCoordSlot, resources.NormalSlot}

func bindMesh(ctx gpu.Context, mesh *resources.Mesh) {
	ctx.BindVertexArray(mesh.VAO())
	for _, slot := range meshSlots {
		ctx.EnableVertexAttribArray(slot)
	}
}

func unbindMesh(ctx gpu.Context) {
	for _, slot := range meshSlots {
		ctx.DisableVertexAttribArray(slot)
	}
	ctx.BindVertexArray(0)
}

// EntityRenderer draws entity batches. The entity shader must be started.
type EntityRenderer struct {
	ctx    gpu.Context
	shader *shaders.EntityShader
}

func NewEntityRenderer(ctx gpu.Context, shader *shaders.EntityShader) *EntityRenderer {
	return &EntityRenderer{ctx: ctx, shader: shader}
}

// Render binds each batch's model once and draws its instances. It returns
// the number of batches and draw calls.
func (r *EntityRenderer) Render(batches []*batch) (bound, draws int) {
	for _, b := range batches {
		r.prepareModel(b.model)
		for _, e := range b.entities {
			r.prepareInstance(e)
			r.ctx.DrawTriangles(b.model.Mesh.IndexCount())
			draws++
		}
		r.unbindModel()
		bound++
	}
	return bound, draws
}

func (r *EntityRenderer) prepareModel(model *models.TexturedModel) {
	bindMesh(r.ctx, model.Mesh)

	mat := model.Material
	r.shader.LoadNumberOfRows(mat.Rows())
	if mat.HasTransparency {
		disableCulling(r.ctx)
	}
	r.shader.LoadFakeLighting(mat.UseFakeLighting)
	r.shader.LoadShineVariables(mat.ShineDamper, mat.Reflectivity)

	r.ctx.ActiveTexture(0)
	r.ctx.BindTexture(mat.Texture.ID())
}

// unbindModel restores culling whether or not the batch disabled it.
func (r *EntityRenderer) unbindModel() {
	enableCulling(r.ctx)
	unbindMesh(r.ctx)
}

func (r *EntityRenderer) prepareInstance(e *entities.Entity) {
	r.shader.LoadTransformationMatrix(e.TransformationMatrix())
	r.shader.LoadOffset(e.TextureXOffset(), e.TextureYOffset())
}
