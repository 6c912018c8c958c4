package prism

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mazznoer/csscolorparser"
)

// Project is the playground manifest: which shaders to compile, which models
// and textures to load, and how the render pipeline binds them. Loaded from
// TOML; zero-value fields keep the defaults from DefaultProject.
type Project struct {
	Name     string          `toml:"name"`
	Viewport ViewportConfig  `toml:"viewport"`
	Camera   CameraConfig    `toml:"camera"`
	Shaders  []ShaderConfig  `toml:"shaders"`
	Models   []ModelConfig   `toml:"models"`
	Textures []TextureConfig `toml:"textures"`
	Pipeline PipelineConfig  `toml:"pipeline"`
}

type ViewportConfig struct {
	// ClearColor is any CSS color string ("#1d2633", "rgb(...)", "teal").
	ClearColor string `toml:"clear_color"`
}

type CameraConfig struct {
	Position     [3]float32 `toml:"position"`
	YawDegrees   float32    `toml:"yaw_degrees"`
	PitchDegrees float32    `toml:"pitch_degrees"`
	FovDegrees   float32    `toml:"fov_degrees"`
	Znear        float32    `toml:"znear"`
	Zfar         float32    `toml:"zfar"`
	Sensitivity  float32    `toml:"sensitivity"`
	MaxSpeed     float32    `toml:"max_speed"`
	Acceleration float32    `toml:"acceleration"`
	Friction     float32    `toml:"friction"`
}

type ShaderConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"` // "glsl" or "wgsl"
	// GLSL stage sources.
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	// Single WGSL source.
	Path string `toml:"path"`
}

type ModelConfig struct {
	Path string `toml:"path"`
}

type TextureConfig struct {
	Name   string `toml:"name"`
	Path   string `toml:"path"`
	Filter string `toml:"filter"` // "linear" (default) or "nearest"
	Wrap   string `toml:"wrap"`   // "wrap" (default), "mirror" or "clamp"
}

type PipelineConfig struct {
	Shader     string            `toml:"shader"`
	BindGroups []BindGroupConfig `toml:"bind_groups"`
	Params     PipelineParams    `toml:"params"`
}

// BindGroupConfig assigns one bind group set index to a resource kind. The
// set indices must be contiguous from zero; that ordering is the wire
// contract between the pipeline layout and the shader's set/binding pairs.
type BindGroupConfig struct {
	Set     uint32 `toml:"set"`
	Kind    string `toml:"kind"` // camera, time, custom, base_color, texture
	Texture string `toml:"texture"`
}

type PipelineParams struct {
	// Custom is the vec4 at set 2, binding 0: domain scale (x, y), time
	// scale (z), warp amplitude (w).
	Custom [4]float32 `toml:"custom"`
	// BaseColor is any CSS color string, bound at set 3, binding 0.
	BaseColor string `toml:"base_color"`
}

const (
	BindKindCamera    = "camera"
	BindKindTime      = "time"
	BindKindCustom    = "custom"
	BindKindBaseColor = "base_color"
	BindKindTexture   = "texture"
)

// Built-in shader names usable without a [[shaders]] entry.
const (
	BuiltinShaderWarp = "warp"
	BuiltinShaderFlat = "flat"
)

func DefaultProject() *Project {
	return &Project{
		Name:     "Untitled",
		Viewport: ViewportConfig{ClearColor: "#1a2633"},
		Camera: CameraConfig{
			Position:     [3]float32{0, 1, 4},
			YawDegrees:   -90,
			PitchDegrees: 0,
			FovDegrees:   60,
			Znear:        0.1,
			Zfar:         100,
			Sensitivity:  0.8,
			MaxSpeed:     6,
			Acceleration: 30,
			Friction:     8,
		},
		Pipeline: PipelineConfig{
			Shader: BuiltinShaderWarp,
			BindGroups: []BindGroupConfig{
				{Set: 0, Kind: BindKindCamera},
				{Set: 1, Kind: BindKindTime},
				{Set: 2, Kind: BindKindCustom},
				{Set: 3, Kind: BindKindBaseColor},
			},
			Params: PipelineParams{
				Custom:    [4]float32{4, 4, 0.3, 1},
				BaseColor: "black",
			},
		},
	}
}

// LoadProject reads a TOML manifest. Absent keys keep their defaults.
func LoadProject(path string) (*Project, error) {
	project := DefaultProject()
	if _, err := toml.DecodeFile(path, project); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project %s: %w", path, err)
	}
	return project, nil
}

func (p *Project) Validate() error {
	if _, err := p.Viewport.parseClearColor(); err != nil {
		return err
	}
	if _, err := p.Pipeline.Params.parseBaseColor(); err != nil {
		return err
	}

	shaderNames := map[string]bool{
		BuiltinShaderWarp: true,
		BuiltinShaderFlat: true,
	}
	for _, shader := range p.Shaders {
		switch shader.Type {
		case "glsl":
			if shader.Vertex == "" || shader.Fragment == "" {
				return fmt.Errorf("glsl shader %q needs both vertex and fragment paths", shader.Name)
			}
		case "wgsl":
			if shader.Path == "" {
				return fmt.Errorf("wgsl shader %q needs a path", shader.Name)
			}
		default:
			return fmt.Errorf("shader %q has unknown type %q", shader.Name, shader.Type)
		}
		shaderNames[shader.Name] = true
	}

	if !shaderNames[p.Pipeline.Shader] {
		return fmt.Errorf("pipeline references unknown shader %q", p.Pipeline.Shader)
	}

	textureNames := map[string]bool{}
	for _, texture := range p.Textures {
		if texture.Path == "" {
			return fmt.Errorf("texture %q has no path", texture.Name)
		}
		textureNames[texture.Name] = true
	}

	groups := append([]BindGroupConfig(nil), p.Pipeline.BindGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Set < groups[j].Set })
	for expected, group := range groups {
		if uint32(expected) != group.Set {
			return fmt.Errorf("bind groups must be contiguous: jump at set %d, expected %d", group.Set, expected)
		}
		switch group.Kind {
		case BindKindCamera, BindKindTime, BindKindCustom, BindKindBaseColor:
		case BindKindTexture:
			if !textureNames[group.Texture] {
				return fmt.Errorf("bind group set %d references unknown texture %q", group.Set, group.Texture)
			}
		default:
			return fmt.Errorf("bind group set %d has unknown kind %q", group.Set, group.Kind)
		}
	}

	return nil
}

// SortedBindGroups returns the bind group list ordered by set index.
func (p *Project) SortedBindGroups() []BindGroupConfig {
	groups := append([]BindGroupConfig(nil), p.Pipeline.BindGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Set < groups[j].Set })
	return groups
}

func (v ViewportConfig) parseClearColor() (wgpu.Color, error) {
	color, err := csscolorparser.Parse(v.ClearColor)
	if err != nil {
		return wgpu.Color{}, fmt.Errorf("bad clear color %q: %w", v.ClearColor, err)
	}
	return wgpu.Color{R: color.R, G: color.G, B: color.B, A: color.A}, nil
}

func (p PipelineParams) parseBaseColor() (mgl32.Vec4, error) {
	if p.BaseColor == "" {
		return DefaultBaseColor, nil
	}
	color, err := csscolorparser.Parse(p.BaseColor)
	if err != nil {
		return mgl32.Vec4{}, fmt.Errorf("bad base color %q: %w", p.BaseColor, err)
	}
	return mgl32.Vec4{float32(color.R), float32(color.G), float32(color.B), float32(color.A)}, nil
}

func (c CameraConfig) apply(cam *Camera) {
	cam.Position = mgl32.Vec3{c.Position[0], c.Position[1], c.Position[2]}
	cam.Yaw = mgl32.DegToRad(c.YawDegrees)
	cam.Pitch = mgl32.DegToRad(c.PitchDegrees)
	cam.Fovy = mgl32.DegToRad(c.FovDegrees)
	cam.Znear = c.Znear
	cam.Zfar = c.Zfar
	cam.Sensitivity = c.Sensitivity
	cam.MaxSpeed = c.MaxSpeed
	cam.Acceleration = c.Acceleration
	cam.Friction = c.Friction
}
