package prism

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssetServer() *AssetServer {
	app := NewAppBuilder().
		UseModule(AssetServerModule{}).
		Build()
	return Resource[AssetServer](app)
}

func writePngFile(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "texture.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func TestAssetServerModule_InstallsBuiltinShaders(t *testing.T) {
	server := newTestAssetServer()
	require.NotNil(t, server)

	warp, ok := server.ShaderByName(BuiltinShaderWarp)
	require.True(t, ok)
	assert.Equal(t, ShaderKindGlsl, warp.Kind)
	assert.NotEmpty(t, warp.VertexSource)
	assert.NotEmpty(t, warp.FragmentSource)

	flat, ok := server.ShaderByName(BuiltinShaderFlat)
	require.True(t, ok)
	assert.Equal(t, ShaderKindGlsl, flat.Kind)

	_, ok = server.ShaderByName("missing")
	assert.False(t, ok)
}

func TestAssetServer_AddWgslShader(t *testing.T) {
	server := newTestAssetServer()

	server.AddWgslShader("custom", "fn vs_main() {}")

	shader, ok := server.ShaderByName("custom")
	require.True(t, ok)
	assert.Equal(t, ShaderKindWgsl, shader.Kind)
	assert.Equal(t, "fn vs_main() {}", shader.Source)
}

func TestAssetServer_LoadGlslShaderMissingFile(t *testing.T) {
	server := newTestAssetServer()

	_, err := server.LoadGlslShader("broken", "missing.vert", "missing.frag")
	assert.Error(t, err)
}

func TestAssetServer_MeshOrder(t *testing.T) {
	server := newTestAssetServer()

	server.CreatePlaneMesh("first", 1)
	server.CreateCubeMesh("second", 1)
	server.CreateColorQuadMesh("third", 1)

	meshes := server.Meshes()
	require.Len(t, meshes, 3)
	assert.Equal(t, "first", meshes[0].Name)
	assert.Equal(t, "second", meshes[1].Name)
	assert.Equal(t, "third", meshes[2].Name)
}

func TestAssetServer_ProceduralMeshShapes(t *testing.T) {
	server := newTestAssetServer()

	server.CreatePlaneMesh("plane", 2)
	server.CreateCubeMesh("cube", 1)

	meshes := server.Meshes()
	plane, cube := meshes[0], meshes[1]

	assert.Equal(t, 4, plane.Vertices.Len())
	assert.Len(t, plane.Indices, 6)

	// 24 vertices so each face keeps its own normals and texcoords.
	assert.Equal(t, 24, cube.Vertices.Len())
	assert.Len(t, cube.Indices, 36)
}

func TestAssetServer_LoadTexture(t *testing.T) {
	server := newTestAssetServer()
	path := writePngFile(t, 4, 2)

	id, err := server.LoadTexture("checker", path, "nearest", "clamp", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	texture, ok := server.TextureByName("checker")
	require.True(t, ok)
	assert.Equal(t, uint32(4), texture.Width)
	assert.Equal(t, uint32(2), texture.Height)
	assert.Len(t, texture.Texels, 4*2*4)
	assert.Equal(t, "nearest", texture.Filter)
	assert.Equal(t, "clamp", texture.Wrap)
}

func TestAssetServer_LoadTextureDownscales(t *testing.T) {
	server := newTestAssetServer()
	path := writePngFile(t, 64, 32)

	_, err := server.LoadTexture("big", path, "linear", "wrap", 16)
	require.NoError(t, err)

	texture, ok := server.TextureByName("big")
	require.True(t, ok)
	assert.Equal(t, uint32(16), texture.Width)
	assert.Equal(t, uint32(8), texture.Height)
	assert.Len(t, texture.Texels, 16*8*4)
}

func TestAssetServer_LoadTextureErrors(t *testing.T) {
	server := newTestAssetServer()

	_, err := server.LoadTexture("missing", filepath.Join(t.TempDir(), "nope.png"), "linear", "wrap", 0)
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = server.LoadTexture("garbage", garbage, "linear", "wrap", 0)
	assert.Error(t, err)
}

func TestAssetServer_LoadObjMesh(t *testing.T) {
	server := newTestAssetServer()
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	_, err := server.LoadObjMesh(path)
	require.NoError(t, err)

	meshes := server.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, 3, meshes[0].Vertices.Len())
}
