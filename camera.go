package prism

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// openglToWgpuMatrix remaps OpenGL clip space (z in [-1, 1]) to wgpu clip
// space (z in [0, 1]). Column-major.
var openglToWgpuMatrix = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

const safeHalfPi = float32(math.Pi/2) - 0.0001

// Camera is a free-flying perspective camera. Yaw and pitch are radians; yaw
// zero looks down +X, pitch is clamped just short of straight up/down.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	Aspect float32
	Fovy   float32
	Znear  float32
	Zfar   float32

	Sensitivity  float32
	MaxSpeed     float32
	Acceleration float32
	Friction     float32

	velocity mgl32.Vec3
	move     mgl32.Vec3
	look     mgl32.Vec2
}

func NewCamera() *Camera {
	return &Camera{
		Position:     mgl32.Vec3{0, 1, 4},
		Yaw:          -float32(math.Pi) / 2,
		Pitch:        0,
		Aspect:       16.0 / 9.0,
		Fovy:         mgl32.DegToRad(60),
		Znear:        0.1,
		Zfar:         100,
		Sensitivity:  0.8,
		MaxSpeed:     6,
		Acceleration: 30,
		Friction:     8,
	}
}

// direction returns the unit view direction for the current yaw and pitch.
func (c *Camera) direction() mgl32.Vec3 {
	sinPitch, cosPitch := sincos32(c.Pitch)
	sinYaw, cosYaw := sincos32(c.Yaw)
	return mgl32.Vec3{cosPitch * cosYaw, sinPitch, cosPitch * sinYaw}.Normalize()
}

// ViewProj returns the combined camera matrix written to the camera uniform:
// clip-space remap, perspective projection, then the look-at view.
func (c *Camera) ViewProj() mgl32.Mat4 {
	proj := openglToWgpuMatrix.Mul4(mgl32.Perspective(c.Fovy, c.Aspect, c.Znear, c.Zfar))
	view := mgl32.LookAtV(c.Position, c.Position.Add(c.direction()), mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// Uniform snapshots the camera into its GPU block.
func (c *Camera) Uniform() CameraUniform {
	return CameraUniform{
		ViewPosition: c.Position.Vec4(1),
		ViewProj:     c.ViewProj(),
	}
}

// Resize updates the aspect ratio after a window resize.
func (c *Camera) Resize(width, height int) {
	if height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// update integrates one frame of movement and look input.
func (c *Camera) update(dt float32) {
	forward := c.direction()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := mgl32.Vec3{0, 1, 0}

	moveDir := forward.Mul(c.move.Z()).Add(right.Mul(c.move.X())).Add(up.Mul(c.move.Y()))
	c.velocity = c.velocity.Add(moveDir.Mul(c.Acceleration * dt))

	if c.velocity.Len() > c.MaxSpeed {
		c.velocity = c.velocity.Normalize().Mul(c.MaxSpeed)
	}

	c.Position = c.Position.Add(c.velocity.Mul(dt))

	if c.move.Len() == 0 {
		c.velocity = c.velocity.Sub(c.velocity.Mul(c.Friction * dt))
		if c.velocity.Len() < 0.01 {
			c.velocity = mgl32.Vec3{}
		}
	}

	c.Yaw += c.look.X() * c.Sensitivity * dt
	c.Pitch -= c.look.Y() * c.Sensitivity * dt

	if c.Pitch > safeHalfPi {
		c.Pitch = safeHalfPi
	}
	if c.Pitch < -safeHalfPi {
		c.Pitch = -safeHalfPi
	}

	c.look = mgl32.Vec2{}
}

func sincos32(v float32) (float32, float32) {
	s, c := math.Sincos(float64(v))
	return float32(s), float32(c)
}
