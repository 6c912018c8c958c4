package prism

import (
	_ "embed"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Built-in shader stages. The GLSL sources are the wire artifacts: vertex
// inputs at locations 0/1/2, uniform blocks at the set/binding pairs listed
// in the project bind group table, fragment output at location 0.

//go:embed shaders/model.vert
var ModelVertexShaderSource string

//go:embed shaders/color.vert
var ColorVertexShaderSource string

//go:embed shaders/flat.frag
var FlatFragmentShaderSource string

//go:embed shaders/warp.frag
var WarpFragmentShaderSource string

const warpIterations = 8

// Rotation/scale matrix applied after each warp iteration, row-major:
// [ 0.88  0.66 ]
// [-0.66  0.88 ]
var warpMatrix = mgl32.Mat2{0.88, -0.66, 0.66, 0.88}

// DefaultCustomParams mirrors the shader defaults when no custom uniform is
// bound: domain scale (x, y), time scale (z), warp amplitude (w).
var DefaultCustomParams = mgl32.Vec4{4, 4, 0.3, 1}

// DefaultBaseColor leaves only the fixed channel offsets (0, 2, 4) in effect.
var DefaultBaseColor = mgl32.Vec4{0, 0, 0, 1}

// TransformVertex is the CPU reference of the vertex stage contract:
// gl_Position = view_proj * vec4(position, 1.0).
func TransformVertex(viewProj mgl32.Mat4, position mgl32.Vec3) mgl32.Vec4 {
	return viewProj.Mul4x1(position.Vec4(1))
}

// FlatFragment is the CPU reference of the flat-colored fragment stage. The
// interpolated vertex color passes through unmodified.
func FlatFragment(color mgl32.Vec3) mgl32.Vec4 {
	return color.Vec4(1)
}

// WarpFragment is the CPU reference of the procedural fragment stage. It is
// fully deterministic: the same (texCoords, time, custom, baseColor) always
// yields the same color.
func WarpFragment(texCoords mgl32.Vec2, time float32, custom, baseColor mgl32.Vec4) mgl32.Vec4 {
	p := mgl32.Vec2{texCoords.X() * custom.X(), texCoords.Y() * custom.Y()}

	for i := 0; i < warpIterations; i++ {
		p[0] += sin32(p.Y()+float32(i)+time*custom.Z()) * custom.W()
		p = warpMatrix.Mul2x1(p)
	}

	return mgl32.Vec4{
		warpChannel(baseColor.X(), p.X()),
		warpChannel(baseColor.Y(), p.X()+2),
		warpChannel(baseColor.Z(), p.X()+4),
		baseColor.W(),
	}
}

func warpChannel(base, phase float32) float32 {
	return clamp01(base + 0.5 + 0.5*sin32(phase))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sin32(v float32) float32 {
	return float32(math.Sin(float64(v)))
}
