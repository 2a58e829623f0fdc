// Package loader decodes model, texture and heightmap files into the data
// the resource manager uploads.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"terrain-renderer/math"
	"terrain-renderer/resources"
)

// objVertex references one corner of a face, 0-based; -1 means absent.
type objVertex struct{ v, vt, vn int }

// LoadOBJ parses a Wavefront .obj file into a single indexed mesh. All
// objects and groups are merged; materials are ignored.
func LoadOBJ(path string) (resources.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return resources.MeshData{}, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	data, err := ParseOBJ(f)
	if err != nil {
		return resources.MeshData{}, fmt.Errorf("obj %q: %w", path, err)
	}
	return data, nil
}

// ParseOBJ reads OBJ text. Polygons are fan-triangulated, vertices sharing
// (v, vt, vn) are merged, texture V is flipped to image row order and
// normals are generated when the file has none.
func ParseOBJ(r io.Reader) (resources.MeshData, error) {
	var (
		positions []math.Vec3
		normals   []math.Vec3
		uvs       []math.Vec2
		corners   []objVertex
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				return resources.MeshData{}, fmt.Errorf("line %d: %s needs 3 components", lineNo, fields[0])
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return resources.MeshData{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}

		case "vt":
			if len(fields) < 3 {
				return resources.MeshData{}, fmt.Errorf("line %d: vt needs 2 components", lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return resources.MeshData{}, fmt.Errorf("line %d: bad texture coordinate", lineNo)
			}
			uvs = append(uvs, math.Vec2{X: float32(u), Y: float32(v)})

		case "f":
			if len(fields) < 4 {
				return resources.MeshData{}, fmt.Errorf("line %d: face needs 3 vertices", lineNo)
			}
			face := make([]objVertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fv, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return resources.MeshData{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, fv)
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return resources.MeshData{}, fmt.Errorf("scan obj: %w", err)
	}
	if len(corners) == 0 {
		return resources.MeshData{}, fmt.Errorf("no faces")
	}
	return buildMesh(corners, positions, normals, uvs), nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	var out [3]float32
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("bad number %q", s)
		}
		out[i] = float32(f)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative
// indices count back from the most recent element.
func parseFaceVertex(tok string, nv, nvt, nvn int) (objVertex, error) {
	parseIdx := func(s string, n int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("bad face index %q", s)
		}
		switch {
		case i > 0:
			i--
		case i < 0:
			i += n
		default:
			return -1, fmt.Errorf("face index 0 in %q", tok)
		}
		if i < 0 || i >= n {
			return -1, fmt.Errorf("face index %s out of range in %q", s, tok)
		}
		return i, nil
	}

	parts := strings.Split(tok, "/")
	res := objVertex{v: -1, vt: -1, vn: -1}
	var err error
	if res.v, err = parseIdx(parts[0], nv); err != nil {
		return res, err
	}
	if res.v < 0 {
		return res, fmt.Errorf("face vertex %q has no position", tok)
	}
	if len(parts) > 1 {
		if res.vt, err = parseIdx(parts[1], nvt); err != nil {
			return res, err
		}
	}
	if len(parts) > 2 {
		if res.vn, err = parseIdx(parts[2], nvn); err != nil {
			return res, err
		}
	}
	return res, nil
}

func buildMesh(corners []objVertex, positions, normals []math.Vec3, uvs []math.Vec2) resources.MeshData {
	seen := map[objVertex]uint32{}
	var data resources.MeshData
	missingNormals := false

	for _, c := range corners {
		if idx, ok := seen[c]; ok {
			data.Indices = append(data.Indices, idx)
			continue
		}
		idx := uint32(len(seen))
		seen[c] = idx
		data.Indices = append(data.Indices, idx)

		p := positions[c.v]
		data.Positions = append(data.Positions, p.X, p.Y, p.Z)

		var uv math.Vec2
		if c.vt >= 0 {
			uv = uvs[c.vt]
		}
		data.TexCoords = append(data.TexCoords, uv.X, 1-uv.Y)

		n := math.Vec3Up
		if c.vn >= 0 {
			n = normals[c.vn]
		} else {
			missingNormals = true
		}
		data.Normals = append(data.Normals, n.X, n.Y, n.Z)
	}

	if missingNormals {
		generateNormals(&data)
	}
	return data
}

// generateNormals replaces every normal with the area-weighted average of
// the faces that share its vertex.
func generateNormals(data *resources.MeshData) {
	pos := func(i uint32) math.Vec3 {
		return math.NewVec3(data.Positions[i*3], data.Positions[i*3+1], data.Positions[i*3+2])
	}
	accum := make([]math.Vec3, data.VertexCount())
	for i := 0; i+2 < len(data.Indices); i += 3 {
		i0, i1, i2 := data.Indices[i], data.Indices[i+1], data.Indices[i+2]
		v0 := pos(i0)
		n := pos(i1).Sub(v0).Cross(pos(i2).Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i, n := range accum {
		if n.Length() == 0 {
			n = math.Vec3Up
		}
		n = n.Normalize()
		data.Normals[i*3], data.Normals[i*3+1], data.Normals[i*3+2] = n.X, n.Y, n.Z
	}
}
