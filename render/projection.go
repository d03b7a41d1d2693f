package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the size in bytes of the camera uniform: view followed by
// projection, each a column-major 4x4 float32 matrix.
const UniformSize = 2 * 16 * 4

// Projection is a perspective projection with WebGPU clip-space depth.
type Projection struct {
	// FovY is the vertical field of view in radians.
	FovY float32
	Near float32
	Far  float32
}

// DefaultProjection returns a 45° projection with near 0.1 and far 10.
func DefaultProjection() Projection {
	return Projection{FovY: math.Pi / 4, Near: 0.1, Far: 10}
}

// zeroToOneDepth remaps GL clip depth [-w, w] to [0, w].
var zeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Matrix returns the projection for a width x height target.
func (p Projection) Matrix(width, height int) mgl32.Mat4 {
	t := Target{Width: width, Height: height}
	return zeroToOneDepth.Mul4(mgl32.Perspective(p.FovY, t.Aspect(), p.Near, p.Far))
}

// EncodeUniform writes view and proj into dst as little-endian float32.
// dst must be at least UniformSize bytes.
func EncodeUniform(dst []byte, view, proj mgl32.Mat4) {
	_ = dst[UniformSize-1]
	putMat4(dst[0:64], view)
	putMat4(dst[64:128], proj)
}

func putMat4(dst []byte, m mgl32.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// appendFloats appends fs to dst as little-endian float32.
func appendFloats(dst []byte, fs []float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
