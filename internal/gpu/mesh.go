package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fpv/scene"
)

// meshVertexStride is the byte stride of one mesh vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	uv       (vec2<f32>) = 8 bytes  (location 1)
const meshVertexStride = 20

// triangleVertices is a triangle pointing along +X in the XY plane.
var triangleVertices = []float32{
	// x, y, z, u, v
	1, 0, 0, 0.5, 0,
	-1, -1, 0, 0, 1,
	-1, 1, 0, 1, 1,
}

// quadVertices is a unit quad centred on the origin in the XY plane,
// as two triangles.
var quadVertices = []float32{
	-0.5, -0.5, 0, 0, 0,
	0.5, -0.5, 0, 1, 0,
	0.5, 0.5, 0, 1, 1,

	0.5, 0.5, 0, 1, 1,
	-0.5, 0.5, 0, 0, 1,
	-0.5, -0.5, 0, 0, 0,
}

// meshData returns the vertex floats for k.
func meshData(k scene.Kind) []float32 {
	switch k {
	case scene.KindTriangle:
		return triangleVertices
	case scene.KindQuad:
		return quadVertices
	}
	return nil
}

// vertexCount returns the number of vertices in data.
func vertexCount(data []float32) uint32 {
	return uint32(len(data) * 4 / meshVertexStride)
}

// meshBytes encodes vertex floats as little-endian bytes.
func meshBytes(data []float32) []byte {
	buf := make([]byte, len(data)*4)
	for i, f := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// meshVertexLayout returns the vertex buffer layout for the instanced
// pipeline.
func meshVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			},
		},
	}
}
