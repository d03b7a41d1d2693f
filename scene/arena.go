package scene

import "github.com/go-gl/mathgl/mgl32"

// FloatsPerSlot is the number of float32 values in one packed matrix.
const FloatsPerSlot = 16

// Arena is a fixed-capacity packed store of 4x4 column-major matrices.
// Its backing slice is allocated once and never grows, so the prefix
// returned by Floats can be uploaded to the GPU without copying.
type Arena struct {
	data []float32
	cap  int
}

// NewArena allocates an arena for capacity matrices, each initialised to
// the identity.
func NewArena(capacity int) *Arena {
	a := &Arena{
		data: make([]float32, capacity*FloatsPerSlot),
		cap:  capacity,
	}
	ident := mgl32.Ident4()
	for i := 0; i < capacity; i++ {
		a.Put(i, ident)
	}
	return a
}

// Cap returns the number of slots.
func (a *Arena) Cap() int { return a.cap }

// Put writes m into slot. It panics if slot is out of range.
func (a *Arena) Put(slot int, m mgl32.Mat4) {
	copy(a.data[slot*FloatsPerSlot:(slot+1)*FloatsPerSlot], m[:])
}

// Slot returns the matrix stored in slot.
func (a *Arena) Slot(slot int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], a.data[slot*FloatsPerSlot:(slot+1)*FloatsPerSlot])
	return m
}

// Floats returns the first n slots as a flat slice aliasing the arena.
func (a *Arena) Floats(n int) []float32 {
	return a.data[:n*FloatsPerSlot]
}
