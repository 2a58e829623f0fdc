package main

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"terrain-renderer/core"
	"terrain-renderer/entities"
	"terrain-renderer/loader"
	"terrain-renderer/math"
	"terrain-renderer/models"
	"terrain-renderer/render"
	"terrain-renderer/resources"
	"terrain-renderer/terrain"
)

var (
	playerStart = math.NewVec3(100, 0, -50)
	sunLight    = entities.Light{Position: math.NewVec3(20000, 40000, 20000), Colour: math.Vec3One}
)

const propRing = 15

// assets loads named files from one directory and uploads them.
type assets struct {
	dir  string
	mgr  *resources.Manager
	opts loader.TextureOptions
	log  *zap.Logger

	white *resources.Texture
}

func (a *assets) texture(name string) (*resources.Texture, error) {
	data, err := loader.LoadTexture(filepath.Join(a.dir, name+".png"), a.opts)
	if err != nil {
		return nil, err
	}
	tex, err := a.mgr.UploadTexture(data)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	return tex, nil
}

func (a *assets) mesh(name string) (*resources.Mesh, error) {
	data, err := loader.LoadOBJ(filepath.Join(a.dir, name+".obj"))
	if err != nil {
		return nil, err
	}
	mesh, err := a.mgr.Upload(data)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}
	return mesh, nil
}

func (a *assets) model(meshName, textureName string) (*models.TexturedModel, error) {
	mesh, err := a.mesh(meshName)
	if err != nil {
		return nil, err
	}
	tex, err := a.texture(textureName)
	if err != nil {
		return nil, err
	}
	a.log.Debug("model loaded",
		zap.String("mesh", meshName),
		zap.String("texture", textureName),
		zap.Int32("indices", mesh.IndexCount()))
	return models.NewTexturedModel(mesh, models.NewMaterial(tex)), nil
}

// whiteTexture is shared by glTF primitives without a base colour image.
func (a *assets) whiteTexture() (*resources.Texture, error) {
	if a.white != nil {
		return a.white, nil
	}
	tex, err := a.mgr.UploadTexture(resources.TextureData{Width: 1, Height: 1, Pixels: []byte{0xff, 0xff, 0xff, 0xff}})
	if err != nil {
		return nil, err
	}
	a.white = tex
	return tex, nil
}

// props uploads every primitive of a glTF file as its own model.
func (a *assets) props(path string) ([]*models.TexturedModel, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.dir, path)
	}
	prims, err := loader.LoadGLTF(path, a.opts)
	if err != nil {
		return nil, err
	}
	out := make([]*models.TexturedModel, 0, len(prims))
	for _, p := range prims {
		mesh, err := a.mgr.Upload(p.Mesh)
		if err != nil {
			return nil, fmt.Errorf("prop %q primitive %q: %w", path, p.Name, err)
		}
		var tex *resources.Texture
		if p.Texture != nil {
			tex, err = a.mgr.UploadTexture(*p.Texture)
		} else {
			tex, err = a.whiteTexture()
		}
		if err != nil {
			return nil, fmt.Errorf("prop %q primitive %q: %w", path, p.Name, err)
		}
		out = append(out, models.NewTexturedModel(mesh, models.NewMaterial(tex)))
	}
	a.log.Info("props loaded", zap.String("path", path), zap.Int("primitives", len(out)))
	return out, nil
}

// forestKinds are the scenery models scattered over the terrain.
type forestKinds struct {
	grass, flower, fern, lowPolyTree, tree *models.TexturedModel
}

// plantForest scatters scenery over a size x size square whose north edge
// runs along z=0, centred on x=0. Every seventh iteration plants grass and
// a flower, every third a fern, a low-poly tree and a tree.
func plantForest(rng *rand.Rand, kinds forestKinds, count int, size float32, ground entities.Ground) []*entities.Entity {
	spot := func() math.Vec3 {
		x := rng.Float32()*size - size/2
		z := rng.Float32() * -size
		return math.NewVec3(x, ground.HeightAt(x, z), z)
	}

	var out []*entities.Entity
	for i := range count {
		if i%7 == 0 {
			out = append(out, entities.New(kinds.grass, spot(), 0, 0, 0, 1.8))
			out = append(out, entities.New(kinds.flower, spot(), 0, 0, 0, 2.3))
		}
		if i%3 == 0 {
			pos := spot()
			out = append(out, entities.NewAtlas(kinds.fern, rng.IntN(4), pos, 0, rng.Float32()*360, 0, 0.9))
			pos = spot()
			out = append(out, entities.New(kinds.lowPolyTree, pos, 0, rng.Float32()*360, 0, rng.Float32()*0.1+0.6))
			pos = spot()
			out = append(out, entities.New(kinds.tree, pos, 0, 0, 0, rng.Float32()+4))
		}
	}
	return out
}

// placeProps spreads models evenly on a ring around centre.
func placeProps(props []*models.TexturedModel, centre math.Vec3, ground entities.Ground) []*entities.Entity {
	out := make([]*entities.Entity, 0, len(props))
	for i, m := range props {
		angle := 360 * float32(i) / float32(len(props))
		rad := math.DegToRad(angle)
		x := centre.X + propRing*math32.Sin(rad)
		z := centre.Z + propRing*math32.Cos(rad)
		out = append(out, entities.New(m, math.NewVec3(x, ground.HeightAt(x, z), z), 0, angle, 0, 1))
	}
	return out
}

// world is everything the frame loop submits.
type world struct {
	terrain *terrain.Terrain
	player  *entities.Player
	scenery []*entities.Entity
	light   entities.Light
}

func loadWorld(cfg core.Config, mgr *resources.Manager, controls entities.Controls, log *zap.Logger) (*world, error) {
	a := &assets{
		dir:  cfg.Assets.Dir,
		mgr:  mgr,
		opts: loader.TextureOptions{MaxSize: cfg.Assets.MaxTextureSize},
		log:  log,
	}

	var pack terrain.TexturePack
	for _, t := range []struct {
		name string
		dst  **resources.Texture
	}{
		{"grassy2", &pack.Background},
		{"dirt", &pack.R},
		{"pinkflowers", &pack.G},
		{"path", &pack.B},
	} {
		tex, err := a.texture(t.name)
		if err != nil {
			return nil, err
		}
		*t.dst = tex
	}
	blendMap, err := a.texture("blendMap")
	if err != nil {
		return nil, err
	}
	heightmap, err := loader.LoadHeightmap(filepath.Join(a.dir, "heightmap.png"))
	if err != nil {
		return nil, err
	}
	ter, err := terrain.New(0, -1, terrain.HeightsFromImage(heightmap), mgr, pack, blendMap)
	if err != nil {
		return nil, err
	}

	var kinds forestKinds
	for _, m := range []struct {
		mesh, texture string
		dst           **models.TexturedModel
	}{
		{"tree", "tree", &kinds.tree},
		{"grassModel", "grassTexture", &kinds.grass},
		{"fern", "fernAtlas", &kinds.fern},
		{"lowPolyTree", "lowPolyTree", &kinds.lowPolyTree},
		{"grassModel", "flower", &kinds.flower},
	} {
		model, err := a.model(m.mesh, m.texture)
		if err != nil {
			return nil, err
		}
		*m.dst = model
	}
	kinds.fern.Material.NumberOfRows = 2
	kinds.fern.Material.HasTransparency = true
	for _, m := range []*models.TexturedModel{kinds.grass, kinds.flower} {
		m.Material.HasTransparency = true
		m.Material.UseFakeLighting = true
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Assets.Seed), 0))
	scenery := plantForest(rng, kinds, cfg.Assets.ForestCount, float32(cfg.Assets.ForestSize), ter)

	for _, path := range cfg.Assets.Props {
		props, err := a.props(path)
		if err != nil {
			return nil, err
		}
		scenery = append(scenery, placeProps(props, playerStart, ter)...)
	}

	playerModel, err := a.model("person", "playerTexture")
	if err != nil {
		return nil, err
	}
	player := entities.NewPlayer(playerModel, playerStart, controls)
	player.RotY = 180
	player.Scale = 0.6
	player.FloorPitch = cfg.Player.FloorPitch

	stats := mgr.Stats()
	log.Info("world loaded",
		zap.Int("scenery", len(scenery)),
		zap.Int64("seed", cfg.Assets.Seed),
		zap.Int("vertex_arrays", stats.VertexArrays),
		zap.Int("buffers", stats.Buffers),
		zap.Int("textures", stats.Textures))

	return &world{terrain: ter, player: player, scenery: scenery, light: sunLight}, nil
}

// submit queues the player, the terrain and all scenery for the next frame.
func (w *world) submit(r *render.MasterRenderer) error {
	if err := r.Submit(&w.player.Entity); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if err := r.SubmitTerrain(w.terrain); err != nil {
		return err
	}
	for _, e := range w.scenery {
		if err := r.Submit(e); err != nil {
			return err
		}
	}
	return nil
}
