package prism

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultProject_Valid(t *testing.T) {
	project := DefaultProject()

	require.NoError(t, project.Validate())
	assert.Equal(t, BuiltinShaderWarp, project.Pipeline.Shader)
	assert.Len(t, project.Pipeline.BindGroups, 4)
}

func TestLoadProject_MergesOverDefaults(t *testing.T) {
	path := writeProjectFile(t, `
name = "Demo"

[viewport]
clear_color = "rebeccapurple"

[camera]
fov_degrees = 45.0

[pipeline.params]
custom = [2.0, 2.0, 1.0, 0.5]
base_color = "#336699"
`)

	project, err := LoadProject(path)
	require.NoError(t, err)

	assert.Equal(t, "Demo", project.Name)
	assert.Equal(t, "rebeccapurple", project.Viewport.ClearColor)
	assert.Equal(t, float32(45), project.Camera.FovDegrees)
	// Untouched keys keep their defaults.
	assert.Equal(t, float32(0.1), project.Camera.Znear)
	assert.Equal(t, BuiltinShaderWarp, project.Pipeline.Shader)
	assert.Equal(t, [4]float32{2, 2, 1, 0.5}, project.Pipeline.Params.Custom)

	color, err := project.Pipeline.Params.parseBaseColor()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, color.X(), 0.01)
	assert.InDelta(t, 0.4, color.Y(), 0.01)
	assert.InDelta(t, 0.6, color.Z(), 0.01)
}

func TestLoadProject_MissingFile(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestLoadProject_MalformedToml(t *testing.T) {
	path := writeProjectFile(t, `name = `)

	_, err := LoadProject(path)
	assert.Error(t, err)
}

func TestProjectValidate_BadClearColor(t *testing.T) {
	project := DefaultProject()
	project.Viewport.ClearColor = "not-a-color"

	assert.Error(t, project.Validate())
}

func TestProjectValidate_UnknownBindKind(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.BindGroups[1].Kind = "lightmap"

	err := project.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestProjectValidate_NonContiguousSets(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.BindGroups = []BindGroupConfig{
		{Set: 0, Kind: BindKindCamera},
		{Set: 2, Kind: BindKindTime},
	}

	err := project.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contiguous")
}

func TestProjectValidate_TextureBindNeedsTexture(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.BindGroups = append(project.Pipeline.BindGroups,
		BindGroupConfig{Set: 4, Kind: BindKindTexture, Texture: "missing"})

	assert.Error(t, project.Validate())

	project.Textures = []TextureConfig{{Name: "missing", Path: "missing.png"}}
	assert.NoError(t, project.Validate())
}

func TestProjectValidate_UnknownPipelineShader(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.Shader = "plasma"

	assert.Error(t, project.Validate())

	project.Shaders = []ShaderConfig{{
		Name: "plasma", Type: "glsl",
		Vertex: "plasma.vert", Fragment: "plasma.frag",
	}}
	assert.NoError(t, project.Validate())
}

func TestProjectValidate_ShaderConfigShape(t *testing.T) {
	project := DefaultProject()

	project.Shaders = []ShaderConfig{{Name: "half", Type: "glsl", Vertex: "half.vert"}}
	assert.Error(t, project.Validate())

	project.Shaders = []ShaderConfig{{Name: "w", Type: "wgsl"}}
	assert.Error(t, project.Validate())

	project.Shaders = []ShaderConfig{{Name: "x", Type: "spirv", Path: "x.spv"}}
	assert.Error(t, project.Validate())
}

func TestSortedBindGroups(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.BindGroups = []BindGroupConfig{
		{Set: 3, Kind: BindKindBaseColor},
		{Set: 0, Kind: BindKindCamera},
		{Set: 2, Kind: BindKindCustom},
		{Set: 1, Kind: BindKindTime},
	}

	sorted := project.SortedBindGroups()

	for i, group := range sorted {
		assert.Equal(t, uint32(i), group.Set)
	}
	// The original slice order is left alone.
	assert.Equal(t, uint32(3), project.Pipeline.BindGroups[0].Set)
}

func TestProjectModule_InstallsDefault(t *testing.T) {
	app := NewAppBuilder().
		UseModule(&ProjectModule{}).
		Build()

	project := Resource[Project](app)
	require.NotNil(t, project)
	assert.Equal(t, "Untitled", project.Name)
}

func TestProjectModule_InstallsFromPath(t *testing.T) {
	path := writeProjectFile(t, `name = "FromDisk"`)

	app := NewAppBuilder().
		UseModule(&ProjectModule{Path: path}).
		Build()

	assert.Equal(t, "FromDisk", Resource[Project](app).Name)
}

func TestProjectModule_BadPathPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().
			UseModule(&ProjectModule{Path: "does-not-exist.toml"}).
			Build()
	})
}

func TestProjectModule_RejectsInvalidInjectedProject(t *testing.T) {
	project := DefaultProject()
	project.Pipeline.Shader = "missing"

	assert.Panics(t, func() {
		NewAppBuilder().
			UseModule(&ProjectModule{Project: project}).
			Build()
	})
}

func TestFlyCameraModule_SeedsFromProject(t *testing.T) {
	project := DefaultProject()
	project.Camera.Position = [3]float32{5, 6, 7}
	project.Camera.FovDegrees = 45

	app := NewAppBuilder().
		UseModule(&ProjectModule{Project: project}, FlyCameraModule{}).
		Build()

	cam := Resource[Camera](app)
	require.NotNil(t, cam)
	assert.Equal(t, float32(5), cam.Position.X())
	assert.InDelta(t, math.Pi/4, cam.Fovy, 1e-5)
}

func TestCameraConfig_Apply(t *testing.T) {
	cam := NewCamera()
	config := CameraConfig{
		Position:     [3]float32{1, 2, 3},
		YawDegrees:   -90,
		PitchDegrees: 30,
		FovDegrees:   90,
		Znear:        0.5,
		Zfar:         200,
		Sensitivity:  1.5,
		MaxSpeed:     10,
		Acceleration: 40,
		Friction:     5,
	}

	config.apply(cam)

	assert.InDelta(t, -math.Pi/2, cam.Yaw, 1e-5)
	assert.InDelta(t, math.Pi/6, cam.Pitch, 1e-5)
	assert.InDelta(t, math.Pi/2, cam.Fovy, 1e-5)
	assert.Equal(t, float32(0.5), cam.Znear)
	assert.Equal(t, float32(200), cam.Zfar)
	assert.Equal(t, float32(10), cam.MaxSpeed)
}
