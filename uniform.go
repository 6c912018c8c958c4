package prism

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraUniform matches the Camera block at set 0, binding 0. Layout is
// byte-exact with the shader side: vec4 view position then a column-major
// mat4 view-projection.
type CameraUniform struct {
	ViewPosition mgl32.Vec4
	ViewProj     mgl32.Mat4
}

// TimeUniform matches the TimeUniform block at set 1, binding 0. The padding
// keeps the block at a 16-byte multiple.
type TimeUniform struct {
	Time float32
	Pad0 uint32
	Pad1 uint32
	Pad2 uint32
}

// UniformData is a dynamic uniform block: an ordered list of typed fields
// packed with std140-style alignment. Used for user-declared blocks whose
// layout is not known at compile time.
type UniformData struct {
	Fields []UniformField
}

type UniformField struct {
	Name  string
	Value UniformValue
}

// UniformValue is a single field of a dynamic uniform block.
type UniformValue interface {
	// layout returns (alignment, size) in bytes.
	layout() (int, int)
	appendTo(buf []byte) []byte
}

type Vec2Value mgl32.Vec2
type Vec3Value mgl32.Vec3
type Vec4Value mgl32.Vec4
type RGBValue mgl32.Vec3
type RGBAValue mgl32.Vec4
type Mat4Value mgl32.Mat4

func Vec2Field(name string, v mgl32.Vec2) UniformField {
	return UniformField{Name: name, Value: Vec2Value(v)}
}

func Vec3Field(name string, v mgl32.Vec3) UniformField {
	return UniformField{Name: name, Value: Vec3Value(v)}
}

func Vec4Field(name string, v mgl32.Vec4) UniformField {
	return UniformField{Name: name, Value: Vec4Value(v)}
}

func RGBField(name string, v mgl32.Vec3) UniformField {
	return UniformField{Name: name, Value: RGBValue(v)}
}

func RGBAField(name string, v mgl32.Vec4) UniformField {
	return UniformField{Name: name, Value: RGBAValue(v)}
}

func Mat4Field(name string, m mgl32.Mat4) UniformField {
	return UniformField{Name: name, Value: Mat4Value(m)}
}

// Cast packs the fields into GPU-ready bytes. Each field starts at the next
// multiple of its alignment, vec3 is padded to 16 bytes, and the total length
// is rounded up to the largest field alignment. The result is deterministic
// for a given field list.
func (d UniformData) Cast() []byte {
	var buf []byte
	structAlign := 1

	for _, field := range d.Fields {
		align, _ := field.Value.layout()
		if align > structAlign {
			structAlign = align
		}

		buf = padTo(buf, align)
		buf = field.Value.appendTo(buf)
	}

	return padTo(buf, structAlign)
}

// Size returns the packed byte length without building the buffer.
func (d UniformData) Size() int {
	length := 0
	structAlign := 1

	for _, field := range d.Fields {
		align, size := field.Value.layout()
		if align > structAlign {
			structAlign = align
		}
		length = alignUp(length, align) + size
	}

	return alignUp(length, structAlign)
}

func (Vec2Value) layout() (int, int) { return 8, 8 }
func (Vec3Value) layout() (int, int) { return 16, 16 }
func (Vec4Value) layout() (int, int) { return 16, 16 }
func (RGBValue) layout() (int, int)  { return 16, 16 }
func (RGBAValue) layout() (int, int) { return 16, 16 }
func (Mat4Value) layout() (int, int) { return 16, 64 }

func (v Vec2Value) appendTo(buf []byte) []byte {
	return appendFloats(buf, v[0], v[1])
}

func (v Vec3Value) appendTo(buf []byte) []byte {
	return appendFloats(buf, v[0], v[1], v[2], 0)
}

func (v Vec4Value) appendTo(buf []byte) []byte {
	return appendFloats(buf, v[0], v[1], v[2], v[3])
}

func (v RGBValue) appendTo(buf []byte) []byte {
	return appendFloats(buf, v[0], v[1], v[2], 0)
}

func (v RGBAValue) appendTo(buf []byte) []byte {
	return appendFloats(buf, v[0], v[1], v[2], v[3])
}

func (m Mat4Value) appendTo(buf []byte) []byte {
	return appendFloats(buf, m[:]...)
}

func appendFloats(buf []byte, floats ...float32) []byte {
	for _, f := range floats {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func padTo(buf []byte, align int) []byte {
	for len(buf)%align != 0 {
		buf = append(buf, 0)
	}
	return buf
}
