package prism

// ModelVertex is the vertex format for loaded and procedural meshes. The
// layout tags drive the wgpu vertex buffer layout, matching the attribute
// locations in shaders/model.vert.
type ModelVertex struct {
	Position  [3]float32 `prism:"layout" location:"0" format:"float3"`
	TexCoords [2]float32 `prism:"layout" location:"1" format:"float2"`
	Normal    [3]float32 `prism:"layout" location:"2" format:"float3"`
}

// ColorVertex carries a per-vertex color for the flat pipeline, matching
// shaders/color.vert.
type ColorVertex struct {
	Position [3]float32 `prism:"layout" location:"0" format:"float3"`
	Color    [3]float32 `prism:"layout" location:"1" format:"float3"`
}

// CreatePlaneMesh builds a unit quad in the XZ plane, centered on the
// origin and facing up, scaled to size. Texture coordinates span the quad
// so fragment shaders see the full [0, 1] domain.
func (server *AssetServer) CreatePlaneMesh(name string, size float32) AssetId {
	h := size / 2
	vertices := []ModelVertex{
		{Position: [3]float32{-h, 0, h}, TexCoords: [2]float32{0, 1}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{h, 0, h}, TexCoords: [2]float32{1, 1}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{h, 0, -h}, TexCoords: [2]float32{1, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{-h, 0, -h}, TexCoords: [2]float32{0, 0}, Normal: [3]float32{0, 1, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return server.LoadMesh(name, MakeAnySlice(vertices), indices)
}

// CreateColorQuadMesh builds a camera-facing quad in the XY plane with a
// distinct color at each corner, for pipelines that take per-vertex colors.
func (server *AssetServer) CreateColorQuadMesh(name string, size float32) AssetId {
	h := size / 2
	vertices := []ColorVertex{
		{Position: [3]float32{-h, -h, 0}, Color: [3]float32{1, 0, 0}},
		{Position: [3]float32{h, -h, 0}, Color: [3]float32{0, 1, 0}},
		{Position: [3]float32{h, h, 0}, Color: [3]float32{0, 0, 1}},
		{Position: [3]float32{-h, h, 0}, Color: [3]float32{1, 1, 1}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return server.LoadMesh(name, MakeAnySlice(vertices), indices)
}

// CreateCubeMesh builds an axis-aligned cube centered on the origin with
// per-face texture coordinates and normals.
func (server *AssetServer) CreateCubeMesh(name string, size float32) AssetId {
	h := size / 2
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var vertices []ModelVertex
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, corner := range f.corners {
			vertices = append(vertices, ModelVertex{
				Position:  corner,
				TexCoords: uvs[i],
				Normal:    f.normal,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return server.LoadMesh(name, MakeAnySlice(vertices), indices)
}
