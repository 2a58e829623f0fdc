// Package terrain builds square height-field tiles, uploads their meshes
// and answers elevation queries against them.
package terrain

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"terrain-renderer/math"
	"terrain-renderer/resources"
)

const (
	Size      float32 = 800
	MaxHeight float32 = 40

	maxPixelColour = 1 << 24
)

var ErrBadHeights = errors.New("terrain: height grid must be square with at least 2 samples per side")

// TexturePack holds the four textures blended across a tile.
type TexturePack struct {
	Background *resources.Texture
	R, G, B    *resources.Texture
}

// Terrain is one Size x Size tile placed at (gridX*Size, gridZ*Size).
type Terrain struct {
	x, z float32

	// heights[x][z]
	heights [][]float32

	Mesh     *resources.Mesh
	Pack     TexturePack
	BlendMap *resources.Texture
}

// HeightsFromImage samples a heightmap. The shorter of its two sides in
// pixels sets the vertex count per side; each pixel's packed RGB maps
// linearly onto [-MaxHeight, MaxHeight).
func HeightsFromImage(img image.Image) [][]float32 {
	b := img.Bounds()
	count := b.Dy()
	if b.Dx() < count {
		count = b.Dx()
	}
	heights := make([][]float32, count)
	for x := 0; x < count; x++ {
		heights[x] = make([]float32, count)
		for z := 0; z < count; z++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+z).RGBA()
			packed := (r>>8)<<16 | (g>>8)<<8 | bl>>8
			h := float32(packed) - maxPixelColour/2
			heights[x][z] = h / (maxPixelColour / 2) * MaxHeight
		}
	}
	return heights
}

// Flat returns a count x count grid at height 0.
func Flat(count int) [][]float32 {
	heights := make([][]float32, count)
	for x := range heights {
		heights[x] = make([]float32, count)
	}
	return heights
}

func validateHeights(heights [][]float32) error {
	n := len(heights)
	if n < 2 {
		return ErrBadHeights
	}
	for x, col := range heights {
		if len(col) != n {
			return fmt.Errorf("%w: column %d has %d samples, want %d", ErrBadHeights, x, len(col), n)
		}
	}
	return nil
}

// Generate builds the tile mesh for heights in local coordinates.
func Generate(heights [][]float32) (resources.MeshData, error) {
	if err := validateHeights(heights); err != nil {
		return resources.MeshData{}, err
	}
	count := len(heights)
	verts := count * count
	data := resources.MeshData{
		Positions: make([]float32, 0, verts*3),
		TexCoords: make([]float32, 0, verts*2),
		Normals:   make([]float32, 0, verts*3),
		Indices:   make([]uint32, 0, 6*(count-1)*(count-1)),
	}

	last := float32(count - 1)
	for i := 0; i < count; i++ {
		for j := 0; j < count; j++ {
			data.Positions = append(data.Positions, float32(j)/last*Size, heights[j][i], float32(i)/last*Size)
			n := normalAt(heights, j, i)
			data.Normals = append(data.Normals, n.X, n.Y, n.Z)
			data.TexCoords = append(data.TexCoords, float32(j)/last, float32(i)/last)
		}
	}
	for gz := 0; gz < count-1; gz++ {
		for gx := 0; gx < count-1; gx++ {
			topLeft := uint32(gz*count + gx)
			topRight := topLeft + 1
			bottomLeft := uint32((gz+1)*count + gx)
			bottomRight := bottomLeft + 1
			data.Indices = append(data.Indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight)
		}
	}
	return data, nil
}

func sample(heights [][]float32, x, z int) float32 {
	last := len(heights) - 1
	x = min(max(x, 0), last)
	z = min(max(z, 0), last)
	return heights[x][z]
}

// normalAt uses central differences; edges repeat the border sample.
func normalAt(heights [][]float32, x, z int) math.Vec3 {
	l := sample(heights, x-1, z)
	r := sample(heights, x+1, z)
	d := sample(heights, x, z-1)
	u := sample(heights, x, z+1)
	return math.NewVec3(l-r, 2, d-u).Normalize()
}

// New generates and uploads a tile.
func New(gridX, gridZ int, heights [][]float32, mgr *resources.Manager, pack TexturePack, blendMap *resources.Texture) (*Terrain, error) {
	data, err := Generate(heights)
	if err != nil {
		return nil, err
	}
	mesh, err := mgr.Upload(data)
	if err != nil {
		return nil, fmt.Errorf("terrain (%d,%d): %w", gridX, gridZ, err)
	}
	return &Terrain{
		x:        float32(gridX) * Size,
		z:        float32(gridZ) * Size,
		heights:  heights,
		Mesh:     mesh,
		Pack:     pack,
		BlendMap: blendMap,
	}, nil
}

// GridOffset is the world position of the tile's origin corner.
func (t *Terrain) GridOffset() (x, z float32) { return t.x, t.z }

// Textures returns the five textures in texture-unit order: background,
// r, g, b, blend map.
func (t *Terrain) Textures() [5]*resources.Texture {
	return [5]*resources.Texture{t.Pack.Background, t.Pack.R, t.Pack.G, t.Pack.B, t.BlendMap}
}

// Uploaded reports whether the mesh and all five textures are live.
func (t *Terrain) Uploaded() bool {
	if t == nil || !t.Mesh.Valid() {
		return false
	}
	for _, tex := range t.Textures() {
		if !tex.Valid() {
			return false
		}
	}
	return true
}

// HeightAt interpolates the surface under a world position. Positions off
// the tile report 0.
func (t *Terrain) HeightAt(worldX, worldZ float32) float32 {
	terrainX := worldX - t.x
	terrainZ := worldZ - t.z
	cell := Size / float32(len(t.heights)-1)
	gridX := int(math32.Floor(terrainX / cell))
	gridZ := int(math32.Floor(terrainZ / cell))
	if gridX < 0 || gridZ < 0 || gridX >= len(t.heights)-1 || gridZ >= len(t.heights)-1 {
		return 0
	}

	xCoord := (terrainX - float32(gridX)*cell) / cell
	zCoord := (terrainZ - float32(gridZ)*cell) / cell
	pos := math.NewVec2(xCoord, zCoord)
	h := t.heights

	// Each cell is split along its anti-diagonal, matching the mesh.
	if xCoord <= 1-zCoord {
		return math.BarycentricHeight(
			math.NewVec3(0, h[gridX][gridZ], 0),
			math.NewVec3(1, h[gridX+1][gridZ], 0),
			math.NewVec3(0, h[gridX][gridZ+1], 1),
			pos)
	}
	return math.BarycentricHeight(
		math.NewVec3(1, h[gridX+1][gridZ], 0),
		math.NewVec3(1, h[gridX+1][gridZ+1], 1),
		math.NewVec3(0, h[gridX][gridZ+1], 1),
		pos)
}
