package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/fpv/scene"
)

var (
	// ErrMissingMesh is returned when a kind with instances has no mesh.
	ErrMissingMesh = errors.New("render: no mesh for shape kind")

	// ErrCapacityExceeded is returned when the counts need more instance
	// slots than the instance buffer holds.
	ErrCapacityExceeded = errors.New("render: instance buffer capacity exceeded")

	// ErrCountMismatch is returned when the packed transforms and the counts
	// disagree on the number of instances.
	ErrCountMismatch = errors.New("render: transform count does not match instance counts")
)

// Compile returns the instanced draws for counts: one per kind in
// scene.DrawOrder with a non-zero count, with BaseInstance set to the sum
// of the counts drawn before it.
func Compile(counts scene.Counts, res Resources) ([]DrawCommand, error) {
	return AppendCommands(nil, counts, res)
}

// AppendCommands is like Compile but appends to dst so callers can reuse
// a slice across frames.
func AppendCommands(dst []DrawCommand, counts scene.Counts, res Resources) ([]DrawCommand, error) {
	if res.Capacity > 0 && counts.Total() > res.Capacity {
		return dst, fmt.Errorf("%w: %d instances, %d slots", ErrCapacityExceeded, counts.Total(), res.Capacity)
	}
	for _, r := range counts.Ranges() {
		if r.Count == 0 {
			continue
		}
		mesh := res.Meshes[r.Kind]
		if mesh.VertexCount == 0 {
			return dst, fmt.Errorf("%w: %s", ErrMissingMesh, r.Kind)
		}
		dst = append(dst, DrawCommand{
			Kind:          r.Kind,
			Pipeline:      res.Pipeline,
			Bindings:      mesh.Bindings,
			VertexCount:   mesh.VertexCount,
			InstanceCount: uint32(r.Count),
			BaseInstance:  uint32(r.Base),
		})
	}
	return dst, nil
}
