package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidLayout is returned for a Grid with a negative extent or a
// non-positive step.
var ErrInvalidLayout = errors.New("scene: invalid layout")

// Grid describes the demo scene: a column of spinning triangles standing
// on a square floor of quads.
type Grid struct {
	// TriangleX is the X coordinate of the triangle column.
	TriangleX float32
	// TriangleExtent places triangles at Y = -TriangleExtent..TriangleExtent.
	TriangleExtent int
	// QuadExtent places quads at X, Y = -QuadExtent..QuadExtent.
	QuadExtent int
	// Step is the spacing between neighbours.
	Step float32
}

// DefaultGrid returns the layout of 11 triangles and 441 quads.
func DefaultGrid() Grid {
	return Grid{TriangleX: 2, TriangleExtent: 5, QuadExtent: 10, Step: 1}
}

// Counts returns the number of entities the grid places.
func (g Grid) Counts() Counts {
	var c Counts
	c[KindTriangle] = 2*g.TriangleExtent + 1
	side := 2*g.QuadExtent + 1
	c[KindQuad] = side * side
	return c
}

// Validate checks the grid parameters.
func (g Grid) Validate() error {
	if g.TriangleExtent < 0 || g.QuadExtent < 0 {
		return fmt.Errorf("%w: negative extent", ErrInvalidLayout)
	}
	if g.Step <= 0 {
		return fmt.Errorf("%w: step %v", ErrInvalidLayout, g.Step)
	}
	return nil
}

// Populate adds the grid's entities to b.
func (g Grid) Populate(b *Builder) *Builder {
	if err := g.Validate(); err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	for y := -g.TriangleExtent; y <= g.TriangleExtent; y++ {
		b.AddTriangle(mgl32.Vec3{g.TriangleX, float32(y) * g.Step, 0})
	}
	for x := -g.QuadExtent; x <= g.QuadExtent; x++ {
		for y := -g.QuadExtent; y <= g.QuadExtent; y++ {
			b.AddQuad(mgl32.Vec3{float32(x) * g.Step, float32(y) * g.Step, 0})
		}
	}
	return b
}
