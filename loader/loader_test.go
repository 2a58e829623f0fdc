package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v -1 1 0
v -1 -1 0
v 1 -1 0
v 1 1 0
vt 0 1
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	data, err := ParseOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)

	assert.Equal(t, 4, data.VertexCount(), "shared corners merged")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Indices)
	// V is flipped: vt 0 1 becomes 0 0.
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1, 1, 0}, data.TexCoords)
	for i := 0; i < len(data.Normals); i += 3 {
		assert.Equal(t, []float32{0, 0, 1}, data.Normals[i:i+3])
	}
}

func TestParseOBJGeneratesNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 0 -1
f 1 2 3
`
	data, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, data.Normals, 9)
	for i := 0; i < 9; i += 3 {
		assert.InDelta(t, 0, data.Normals[i], 1e-6)
		assert.InDelta(t, 1, data.Normals[i+1], 1e-6)
		assert.InDelta(t, 0, data.Normals[i+2], 1e-6)
	}
	assert.Equal(t, []float32{0, 1, 0, 1, 0, 1}, data.TexCoords, "missing uv reads as (0,0) before the flip")
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	data, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, data.Indices)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, data.Positions)
}

func TestParseOBJErrors(t *testing.T) {
	tests := map[string]string{
		"no faces":        "v 0 0 0\n",
		"bad number":      "v 0 x 0\n",
		"index range":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"short vertex":    "v 0 0\n",
		"bad uv index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n",
		"missing vertex":  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf /1 2 3\n",
		"two-vertex face": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2\nf 1 2 3\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	data, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, data.Indices, 6)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	data, err := DecodeTexture(bytes.NewReader(encodePNG(t, gradient(3, 2))), TextureOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, data.Width)
	assert.Equal(t, 2, data.Height)
	require.Len(t, data.Pixels, 3*2*4)
	assert.Equal(t, []byte{20, 10, 7, 255}, data.Pixels[(1*3+2)*4:(1*3+2)*4+4])
}

func TestDecodeTextureFlip(t *testing.T) {
	data, err := DecodeTexture(bytes.NewReader(encodePNG(t, gradient(2, 2))), TextureOptions{FlipVertical: true})
	require.NoError(t, err)
	assert.Equal(t, byte(10), data.Pixels[1], "first row is the old last row")
	assert.Equal(t, byte(0), data.Pixels[2*4+1])
}

func TestTextureMaxSize(t *testing.T) {
	data := TextureFromImage(gradient(16, 8), TextureOptions{MaxSize: 4})
	assert.Equal(t, 4, data.Width)
	assert.Equal(t, 2, data.Height)
	assert.Len(t, data.Pixels, 4*2*4)

	data = TextureFromImage(gradient(2, 2), TextureOptions{MaxSize: 4})
	assert.Equal(t, 2, data.Width)
}

func TestTextureFromSubImage(t *testing.T) {
	sub := gradient(4, 4).SubImage(image.Rect(1, 1, 3, 3))
	data := TextureFromImage(sub, TextureOptions{})
	assert.Equal(t, 2, data.Width)
	assert.Len(t, data.Pixels, 2*2*4)
	assert.Equal(t, []byte{10, 10, 7, 255}, data.Pixels[:4])
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	_, err := DecodeTexture(strings.NewReader("not an image"), TextureOptions{})
	assert.Error(t, err)
}

func TestLoadHeightmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heightmap.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, gradient(4, 4)), 0o644))

	img, err := LoadHeightmap(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	tex, err := LoadTexture(path, TextureOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Height)
}

func TestLoadGLTF(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 2, 1, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}
	path := filepath.Join(t.TempDir(), "quad.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	prims, err := LoadGLTF(path, TextureOptions{})
	require.NoError(t, err)
	require.Len(t, prims, 1)
	p := prims[0]
	assert.Equal(t, "quad_p0", p.Name)
	assert.Nil(t, p.Texture)
	assert.Equal(t, 4, p.Mesh.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, p.Mesh.Indices)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 1, 1}, p.Mesh.TexCoords)
	require.Len(t, p.Mesh.Normals, 12)
	assert.InDelta(t, 1, p.Mesh.Normals[2], 1e-6, "generated normal faces +Z")
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb"), TextureOptions{})
	assert.Error(t, err)
}
