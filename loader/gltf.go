package loader

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"terrain-renderer/resources"
)

// Primitive is one glTF mesh primitive with its base-colour texture, if
// the material has one that could be decoded.
type Primitive struct {
	Name    string
	Mesh    resources.MeshData
	Texture *resources.TextureData
}

// LoadGLTF reads every triangle primitive of a .gltf or .glb file. Node
// transforms are not applied.
func LoadGLTF(path string, opts TextureOptions) ([]Primitive, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	textures := make([]*resources.TextureData, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		tex, err := gltfImage(doc, dir, *gt.Source, opts)
		if err != nil {
			return nil, fmt.Errorf("gltf %q: image %d: %w", path, *gt.Source, err)
		}
		textures[i] = tex
	}

	var prims []Primitive
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			data, err := gltfPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("gltf %q: mesh %d primitive %d: %w", path, mi, pi, err)
			}
			p := Primitive{Name: fmt.Sprintf("%s_p%d", gm.Name, pi), Mesh: data}
			if prim.Material != nil && *prim.Material < len(doc.Materials) {
				if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
					if idx := pbr.BaseColorTexture.Index; idx < len(textures) {
						p.Texture = textures[idx]
					}
				}
			}
			prims = append(prims, p)
		}
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("gltf %q: no triangle primitives", path)
	}
	return prims, nil
}

func gltfImage(doc *gltf.Document, dir string, index int, opts TextureOptions) (*resources.TextureData, error) {
	img := doc.Images[index]
	var (
		data resources.TextureData
		err  error
	)
	switch {
	case img.BufferView != nil:
		var raw []byte
		raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err == nil {
			data, err = DecodeTexture(bytes.NewReader(raw), opts)
		}
	case img.IsEmbeddedResource():
		var raw []byte
		raw, err = img.MarshalData()
		if err == nil {
			data, err = DecodeTexture(bytes.NewReader(raw), opts)
		}
	case img.URI != "":
		data, err = LoadTexture(filepath.Join(dir, img.URI), opts)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func gltfPrimitive(doc *gltf.Document, prim *gltf.Primitive) (resources.MeshData, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return resources.MeshData{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return resources.MeshData{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return resources.MeshData{}, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return resources.MeshData{}, fmt.Errorf("texture coordinates: %w", err)
		}
	}

	data := resources.MeshData{
		Positions: make([]float32, 0, len(positions)*3),
		TexCoords: make([]float32, 0, len(positions)*2),
		Normals:   make([]float32, 0, len(positions)*3),
	}
	for i, p := range positions {
		data.Positions = append(data.Positions, p[0], p[1], p[2])
		var uv [2]float32
		if i < len(uvs) {
			uv = uvs[i]
		}
		data.TexCoords = append(data.TexCoords, uv[0], uv[1])
		n := [3]float32{0, 1, 0}
		if i < len(normals) {
			n = normals[i]
		}
		data.Normals = append(data.Normals, n[0], n[1], n[2])
	}

	if prim.Indices != nil {
		if data.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return resources.MeshData{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		data.Indices = make([]uint32, len(positions))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}
	if len(normals) < len(positions) {
		generateNormals(&data)
	}
	return data, nil
}
