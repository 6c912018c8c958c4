package prism

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestUniformData_Vec2ThenVec4(t *testing.T) {
	data := UniformData{Fields: []UniformField{
		Vec2Field("offset", mgl32.Vec2{1, 2}),
		Vec4Field("color", mgl32.Vec4{3, 4, 5, 6}),
	}}

	buf := data.Cast()

	// vec2 at 0, then 8 bytes of padding so the vec4 starts at 16.
	require.Len(t, buf, 32)
	assert.Equal(t, data.Size(), len(buf))
	assert.Equal(t, float32(1), float32At(t, buf, 0))
	assert.Equal(t, float32(2), float32At(t, buf, 4))
	assert.Equal(t, float32(3), float32At(t, buf, 16))
	assert.Equal(t, float32(6), float32At(t, buf, 28))
}

func TestUniformData_Vec2ThenRGB(t *testing.T) {
	data := UniformData{Fields: []UniformField{
		Vec2Field("offset", mgl32.Vec2{1, 2}),
		RGBField("tint", mgl32.Vec3{7, 8, 9}),
	}}

	buf := data.Cast()

	// rgb packs like a vec4 with a zeroed w.
	require.Len(t, buf, 32)
	assert.Equal(t, data.Size(), len(buf))
	assert.Equal(t, float32(7), float32At(t, buf, 16))
	assert.Equal(t, float32(9), float32At(t, buf, 24))
	assert.Equal(t, float32(0), float32At(t, buf, 28))
}

func TestUniformData_Vec3ThenVec2(t *testing.T) {
	data := UniformData{Fields: []UniformField{
		Vec3Field("position", mgl32.Vec3{1, 2, 3}),
		Vec2Field("offset", mgl32.Vec2{4, 5}),
	}}

	buf := data.Cast()

	// vec3 occupies a full 16-byte slot; the vec2 follows at 16 and the
	// struct is rounded up to its 16-byte alignment.
	require.Len(t, buf, 32)
	assert.Equal(t, data.Size(), len(buf))
	assert.Equal(t, float32(3), float32At(t, buf, 8))
	assert.Equal(t, float32(0), float32At(t, buf, 12))
	assert.Equal(t, float32(4), float32At(t, buf, 16))
	assert.Equal(t, float32(5), float32At(t, buf, 20))
}

func TestUniformData_Mat4(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	data := UniformData{Fields: []UniformField{
		Mat4Field("model", m),
	}}

	buf := data.Cast()

	require.Len(t, buf, 64)
	assert.Equal(t, data.Size(), len(buf))
	// Column-major: the translation column starts at float 12.
	assert.Equal(t, float32(1), float32At(t, buf, 12*4))
	assert.Equal(t, float32(2), float32At(t, buf, 13*4))
	assert.Equal(t, float32(3), float32At(t, buf, 14*4))
}

func TestUniformData_Empty(t *testing.T) {
	data := UniformData{}

	assert.Empty(t, data.Cast())
	assert.Equal(t, 0, data.Size())
}
