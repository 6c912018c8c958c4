package prism

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadObj parses a Wavefront OBJ file into an indexed triangle mesh.
// Polygons are fan-triangulated, the V texture coordinate is flipped to
// match the top-left image origin, and vertices are deduplicated by their
// position/texcoord/normal index triplet. Negative face indices count back
// from the end of the respective attribute list. Materials, groups and
// smoothing directives are ignored.
func LoadObj(path string) ([]ModelVertex, []uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer file.Close()

	var (
		positions [][3]float32
		texCoords [][2]float32
		normals   [][3]float32

		vertices []ModelVertex
		indices  []uint32
		seen     = map[string]uint32{}
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, objError(path, lineNo, err)
			}
			positions = append(positions, [3]float32{p[0], p[1], p[2]})

		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, nil, objError(path, lineNo, err)
			}
			texCoords = append(texCoords, [2]float32{p[0], 1 - p[1]})

		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, objError(path, lineNo, err)
			}
			normals = append(normals, [3]float32{p[0], p[1], p[2]})

		case "f":
			corners := fields[1:]
			if len(corners) < 3 {
				return nil, nil, objError(path, lineNo, fmt.Errorf("face with %d vertices", len(corners)))
			}
			face := make([]uint32, len(corners))
			for i, corner := range corners {
				index, ok := seen[corner]
				if !ok {
					vertex, err := resolveFaceVertex(corner, positions, texCoords, normals)
					if err != nil {
						return nil, nil, objError(path, lineNo, err)
					}
					index = uint32(len(vertices))
					vertices = append(vertices, vertex)
					seen[corner] = index
				}
				face[i] = index
			}
			for i := 2; i < len(face); i++ {
				indices = append(indices, face[0], face[i-1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	if len(indices) == 0 {
		return nil, nil, fmt.Errorf("model %s has no faces", path)
	}

	return vertices, indices, nil
}

func resolveFaceVertex(corner string, positions [][3]float32, texCoords [][2]float32, normals [][3]float32) (ModelVertex, error) {
	parts := strings.Split(corner, "/")
	if len(parts) > 3 {
		return ModelVertex{}, fmt.Errorf("malformed face vertex %q", corner)
	}

	var vertex ModelVertex

	pi, err := resolveObjIndex(parts[0], len(positions))
	if err != nil {
		return ModelVertex{}, err
	}
	vertex.Position = positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveObjIndex(parts[1], len(texCoords))
		if err != nil {
			return ModelVertex{}, err
		}
		vertex.TexCoords = texCoords[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveObjIndex(parts[2], len(normals))
		if err != nil {
			return ModelVertex{}, err
		}
		vertex.Normal = normals[ni]
	}
	return vertex, nil
}

// resolveObjIndex maps a 1-based OBJ index, possibly negative, to a
// 0-based slice index.
func resolveObjIndex(field string, length int) (int, error) {
	raw, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("malformed index %q: %w", field, err)
	}
	index := raw
	if index < 0 {
		index += length
	} else {
		index--
	}
	if index < 0 || index >= length {
		return 0, fmt.Errorf("index %d out of range (of %d)", raw, length)
	}
	return index, nil
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d components, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("malformed component %q: %w", fields[i], err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func objError(path string, line int, err error) error {
	return fmt.Errorf("model %s line %d: %w", path, line, err)
}
