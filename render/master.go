// Package render batches per-frame submissions by textured model and draws
// them with the entity and terrain shaders.
package render

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"terrain-renderer/entities"
	"terrain-renderer/internal/gpu"
	"terrain-renderer/math"
	"terrain-renderer/models"
	"terrain-renderer/shaders"
	"terrain-renderer/terrain"
)

var ErrNotUploaded = errors.New("render: submission references resources that are not uploaded")

type Config struct {
	FOV       float32   `yaml:"fov"`
	Near      float32   `yaml:"near"`
	Far       float32   `yaml:"far"`
	Width     int       `yaml:"-"`
	Height    int       `yaml:"-"`
	SkyColour math.Vec3 `yaml:"sky_colour"`
}

func DefaultConfig() Config {
	return Config{
		FOV:       70,
		Near:      0.1,
		Far:       1000,
		Width:     1280,
		Height:    720,
		SkyColour: math.NewVec3(0.5, 0.5, 0.5),
	}
}

func (c Config) aspect() float32 {
	if c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// Stats describes one rendered frame.
type Stats struct {
	Batches      int
	Draws        int
	TerrainDraws int
}

type batch struct {
	model    *models.TexturedModel
	entities []*entities.Entity
}

// frame is the submission set for one Render call. Batches keep
// first-submission order and entities keep insertion order.
type frame struct {
	batches  []*batch
	byModel  map[*models.TexturedModel]*batch
	terrains []*terrain.Terrain
}

func (f *frame) add(e *entities.Entity) {
	b, ok := f.byModel[e.Model]
	if !ok {
		b = &batch{model: e.Model}
		f.byModel[e.Model] = b
		f.batches = append(f.batches, b)
	}
	b.entities = append(b.entities, e)
}

func (f *frame) reset() {
	clear(f.byModel)
	f.batches = f.batches[:0]
	f.terrains = f.terrains[:0]
}

// MasterRenderer owns both shader programs and the current frame's
// submissions.
type MasterRenderer struct {
	ctx gpu.Context
	log *zap.Logger
	cfg Config

	entityShader  *shaders.EntityShader
	terrainShader *shaders.TerrainShader
	entities      *EntityRenderer
	terrains      *TerrainRenderer

	frame frame
}

// NewMasterRenderer builds both shaders, loads the projection into each and
// enables back-face culling.
func NewMasterRenderer(ctx gpu.Context, cfg Config, log *zap.Logger) (*MasterRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	enableCulling(ctx)

	es, err := shaders.NewEntityShader(ctx)
	if err != nil {
		return nil, fmt.Errorf("entity shader: %w", err)
	}
	ts, err := shaders.NewTerrainShader(ctx)
	if err != nil {
		es.Delete()
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	r := &MasterRenderer{
		ctx:           ctx,
		log:           log,
		cfg:           cfg,
		entityShader:  es,
		terrainShader: ts,
		entities:      NewEntityRenderer(ctx, es),
		terrains:      NewTerrainRenderer(ctx, ts),
		frame:         frame{byModel: make(map[*models.TexturedModel]*batch)},
	}
	r.loadProjection()

	ts.Start()
	ts.ConnectTextureUnits()
	ts.Stop()

	log.Debug("master renderer ready",
		zap.Float32("fov", cfg.FOV),
		zap.Float32("near", cfg.Near),
		zap.Float32("far", cfg.Far))
	return r, nil
}

func (r *MasterRenderer) loadProjection() {
	proj := math.ProjectionMatrix(r.cfg.FOV, r.cfg.aspect(), r.cfg.Near, r.cfg.Far)
	r.ctx.Viewport(0, 0, int32(r.cfg.Width), int32(r.cfg.Height))

	r.entityShader.Start()
	r.entityShader.LoadProjectionMatrix(proj)
	r.entityShader.Stop()

	r.terrainShader.Start()
	r.terrainShader.LoadProjectionMatrix(proj)
	r.terrainShader.Stop()
}

// Resize updates the viewport and reloads the projection for the new
// framebuffer size.
func (r *MasterRenderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.cfg.Width, r.cfg.Height = width, height
	r.loadProjection()
}

func (r *MasterRenderer) Config() Config { return r.cfg }

// SetSkyColour changes the clear colour and the fog colour from the next
// frame on.
func (r *MasterRenderer) SetSkyColour(c math.Vec3) { r.cfg.SkyColour = c }

// Submit queues e for the next Render, batched by its model pointer.
func (r *MasterRenderer) Submit(e *entities.Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", ErrNotUploaded)
	}
	if !e.Model.Uploaded() {
		return fmt.Errorf("%w: entity at %v", ErrNotUploaded, e.Position)
	}
	r.frame.add(e)
	return nil
}

// SubmitTerrain queues t for the next Render. Terrains are drawn in
// submission order and never batched.
func (r *MasterRenderer) SubmitTerrain(t *terrain.Terrain) error {
	if !t.Uploaded() {
		return fmt.Errorf("%w: terrain", ErrNotUploaded)
	}
	r.frame.terrains = append(r.frame.terrains, t)
	return nil
}

// Render draws everything submitted since the last call and then discards
// the submissions.
func (r *MasterRenderer) Render(light entities.Light, viewer math.Viewer) Stats {
	defer r.frame.reset()
	r.prepare()

	var stats Stats

	r.entityShader.Start()
	r.entityShader.LoadSkyColour(r.cfg.SkyColour)
	r.entityShader.LoadLight(light.Position, light.Colour)
	r.entityShader.LoadViewMatrix(viewer)
	stats.Batches, stats.Draws = r.entities.Render(r.frame.batches)
	r.entityShader.Stop()

	r.terrainShader.Start()
	r.terrainShader.LoadSkyColour(r.cfg.SkyColour)
	r.terrainShader.LoadLight(light.Position, light.Colour)
	r.terrainShader.LoadViewMatrix(viewer)
	stats.TerrainDraws = r.terrains.Render(r.frame.terrains)
	r.terrainShader.Stop()

	return stats
}

func (r *MasterRenderer) prepare() {
	r.ctx.Enable(gpu.DepthTest)
	sky := r.cfg.SkyColour
	r.ctx.ClearColor(sky.X, sky.Y, sky.Z, 1)
	r.ctx.Clear()
}

// Cleanup deletes both shader programs.
func (r *MasterRenderer) Cleanup() {
	r.entityShader.Delete()
	r.terrainShader.Delete()
}

func enableCulling(ctx gpu.Context) {
	ctx.Enable(gpu.CullFace)
	ctx.CullBackFaces()
}

func disableCulling(ctx gpu.Context) {
	ctx.Disable(gpu.CullFace)
}
