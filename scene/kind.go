// Package scene holds the per-frame model of an instanced first-person scene.
//
// Entities are grouped by shape kind. Every tick each entity recomputes its
// model matrix and writes it into a fixed-capacity packed arena at a slot
// that never changes for the lifetime of the scene:
//
//	slot(kind, i) = Σ counts of kinds earlier in DrawOrder + i
//
// The same DrawOrder table drives the draw compiler in package render, so
// packed slots and instanced draw ranges always agree.
package scene

import "fmt"

// Kind identifies the update rule and draw grouping of an entity.
type Kind uint8

const (
	// KindTriangle is a spinning triangle.
	KindTriangle Kind = iota
	// KindQuad is a stationary quad.
	KindQuad
	// KindCamera is the first-person camera. It is never drawn.
	KindCamera
)

// NumShapes is the number of drawable kinds.
const NumShapes = 2

// DrawOrder is the order in which shape kinds are packed and drawn.
// Packing and draw compilation must both iterate this table.
var DrawOrder = [NumShapes]Kind{KindTriangle, KindQuad}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTriangle:
		return "triangle"
	case KindQuad:
		return "quad"
	case KindCamera:
		return "camera"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Drawable reports whether k is a shape kind that occupies arena slots.
func (k Kind) Drawable() bool {
	return int(k) < NumShapes
}

// Counts holds the number of instances of each drawable kind.
type Counts [NumShapes]int

// Of returns the instance count for k, or 0 for non-drawable kinds.
func (c Counts) Of(k Kind) int {
	if !k.Drawable() {
		return 0
	}
	return c[k]
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, k := range DrawOrder {
		n += c[k]
	}
	return n
}

// Base returns the first slot of kind k: the sum of the counts of every
// kind that precedes k in DrawOrder.
func (c Counts) Base(k Kind) int {
	base := 0
	for _, o := range DrawOrder {
		if o == k {
			return base
		}
		base += c[o]
	}
	return base
}

// InstanceRange is a contiguous run of arena slots owned by one kind.
type InstanceRange struct {
	Kind  Kind
	Base  int
	Count int
}

// End returns the slot just past the range.
func (r InstanceRange) End() int { return r.Base + r.Count }

// Ranges returns one range per drawable kind in DrawOrder, empty kinds
// included. The ranges partition [0, Total()).
func (c Counts) Ranges() []InstanceRange {
	out := make([]InstanceRange, 0, NumShapes)
	base := 0
	for _, k := range DrawOrder {
		out = append(out, InstanceRange{Kind: k, Base: base, Count: c[k]})
		base += c[k]
	}
	return out
}

// String formats counts as "triangle=11 quad=441".
func (c Counts) String() string {
	s := ""
	for i, k := range DrawOrder {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", k, c[k])
	}
	return s
}
