package prism

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type AssetId string

type ShaderKind int

const (
	ShaderKindGlsl ShaderKind = iota
	ShaderKindWgsl
)

// ShaderAsset holds shader source text. GLSL assets carry one source per
// stage; WGSL assets carry a single source with vs_main/fs_main entries.
type ShaderAsset struct {
	Name           string
	Kind           ShaderKind
	VertexSource   string
	FragmentSource string
	Source         string
}

type MeshAsset struct {
	Name     string
	Vertices AnySlice
	Indices  []uint32
}

type TextureAsset struct {
	Name   string
	Texels []uint8
	Width  uint32
	Height uint32
	Filter string
	Wrap   string
}

// AssetServer owns every loaded shader, mesh and texture. Lookups go by
// AssetId; shaders and textures are also addressable by their manifest name.
type AssetServer struct {
	shaders  map[AssetId]*ShaderAsset
	meshes   map[AssetId]*MeshAsset
	textures map[AssetId]*TextureAsset

	shaderNames  map[string]AssetId
	textureNames map[string]AssetId
	meshOrder    []AssetId
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	server := &AssetServer{
		shaders:      make(map[AssetId]*ShaderAsset),
		meshes:       make(map[AssetId]*MeshAsset),
		textures:     make(map[AssetId]*TextureAsset),
		shaderNames:  make(map[string]AssetId),
		textureNames: make(map[string]AssetId),
	}
	server.AddGlslShader(BuiltinShaderWarp, ModelVertexShaderSource, WarpFragmentShaderSource)
	server.AddGlslShader(BuiltinShaderFlat, ColorVertexShaderSource, FlatFragmentShaderSource)
	cmd.AddResources(server)
}

func (server *AssetServer) AddGlslShader(name, vertexSource, fragmentSource string) AssetId {
	id := makeAssetId()
	server.shaders[id] = &ShaderAsset{
		Name:           name,
		Kind:           ShaderKindGlsl,
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
	}
	server.shaderNames[name] = id
	return id
}

func (server *AssetServer) AddWgslShader(name, source string) AssetId {
	id := makeAssetId()
	server.shaders[id] = &ShaderAsset{
		Name:   name,
		Kind:   ShaderKindWgsl,
		Source: source,
	}
	server.shaderNames[name] = id
	return id
}

func (server *AssetServer) LoadGlslShader(name, vertexPath, fragmentPath string) (AssetId, error) {
	vertex, err := os.ReadFile(vertexPath)
	if err != nil {
		return "", fmt.Errorf("failed to read vertex shader %s: %w", vertexPath, err)
	}
	fragment, err := os.ReadFile(fragmentPath)
	if err != nil {
		return "", fmt.Errorf("failed to read fragment shader %s: %w", fragmentPath, err)
	}
	return server.AddGlslShader(name, string(vertex), string(fragment)), nil
}

func (server *AssetServer) LoadWgslShader(name, path string) (AssetId, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	return server.AddWgslShader(name, string(source)), nil
}

func (server *AssetServer) ShaderByName(name string) (*ShaderAsset, bool) {
	id, ok := server.shaderNames[name]
	if !ok {
		return nil, false
	}
	return server.shaders[id], true
}

func (server *AssetServer) LoadMesh(name string, vertices AnySlice, indices []uint32) AssetId {
	id := makeAssetId()
	server.meshes[id] = &MeshAsset{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	server.meshOrder = append(server.meshOrder, id)
	return id
}

// LoadObjMesh parses a Wavefront OBJ file into a single indexed mesh.
func (server *AssetServer) LoadObjMesh(path string) (AssetId, error) {
	vertices, indices, err := LoadObj(path)
	if err != nil {
		return "", err
	}
	return server.LoadMesh(path, MakeAnySlice(vertices), indices), nil
}

// Meshes returns every loaded mesh in load order.
func (server *AssetServer) Meshes() []*MeshAsset {
	meshes := make([]*MeshAsset, 0, len(server.meshOrder))
	for _, id := range server.meshOrder {
		meshes = append(meshes, server.meshes[id])
	}
	return meshes
}

// LoadTexture decodes an image file into RGBA texels. Textures larger than
// maxDim on either axis are downscaled to fit; pass 0 to keep the source
// size. Filter and wrap select the sampler modes for this texture.
func (server *AssetServer) LoadTexture(name, path, filter, wrap string, maxDim uint32) (AssetId, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode texture %s: %w", path, err)
	}

	rgba := imaging.Clone(img)
	bounds := rgba.Bounds()
	if maxDim > 0 && (bounds.Dx() > int(maxDim) || bounds.Dy() > int(maxDim)) {
		rgba = imaging.Fit(rgba, int(maxDim), int(maxDim), imaging.Lanczos)
		bounds = rgba.Bounds()
	}

	id := makeAssetId()
	server.textures[id] = &TextureAsset{
		Name:   name,
		Texels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Filter: filter,
		Wrap:   wrap,
	}
	server.textureNames[name] = id
	return id, nil
}

func (server *AssetServer) CreateTexture(name string, texels []uint8, width, height uint32) AssetId {
	id := makeAssetId()
	server.textures[id] = &TextureAsset{
		Name:   name,
		Texels: texels,
		Width:  width,
		Height: height,
	}
	server.textureNames[name] = id
	return id
}

func (server *AssetServer) TextureByName(name string) (*TextureAsset, bool) {
	id, ok := server.textureNames[name]
	if !ok {
		return nil, false
	}
	return server.textures[id], true
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
