package scene

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCapacity is the number of instance slots reserved when none is
// configured.
const DefaultCapacity = 1024

var (
	// ErrInvalidCapacity is returned when the arena capacity is not positive.
	ErrInvalidCapacity = errors.New("scene: capacity must be positive")

	// ErrCapacityExceeded is returned when more entities are registered than
	// the arena can hold.
	ErrCapacityExceeded = errors.New("scene: instance capacity exceeded")

	// ErrNotDrawable is returned when an entity's kind has no arena slots.
	ErrNotDrawable = errors.New("scene: entity kind is not drawable")

	// ErrDuplicateEntity is returned when the same entity is added twice.
	ErrDuplicateEntity = errors.New("scene: entity added more than once")
)

// Builder collects entities and produces a Scene with a fixed slot layout.
// Errors are sticky: the first failure is reported by Build.
//
// Example:
//
//	s, err := scene.NewBuilder(4).
//	    AddQuad(mgl32.Vec3{0, 0, 0}).
//	    AddTriangle(mgl32.Vec3{2, 0, 0}).
//	    Build()
type Builder struct {
	capacity int
	entities [NumShapes][]Entity
	seen     map[Entity]struct{}
	camera   *Camera
	err      error
}

// NewBuilder starts a scene with room for capacity instances.
func NewBuilder(capacity int) *Builder {
	return &Builder{capacity: capacity}
}

// Add registers e. Entities of the same kind are packed in insertion order.
func (b *Builder) Add(e Entity) *Builder {
	if b.err != nil {
		return b
	}
	if e == nil {
		b.err = fmt.Errorf("%w: nil entity", ErrNotDrawable)
		return b
	}
	k := e.Kind()
	if !k.Drawable() {
		b.err = fmt.Errorf("%w: %s", ErrNotDrawable, k)
		return b
	}
	// Non-comparable entity types cannot alias and would panic as map keys.
	if reflect.TypeOf(e).Comparable() {
		if _, dup := b.seen[e]; dup {
			b.err = fmt.Errorf("%w: %s", ErrDuplicateEntity, k)
			return b
		}
		if b.seen == nil {
			b.seen = make(map[Entity]struct{})
		}
		b.seen[e] = struct{}{}
	}
	b.entities[k] = append(b.entities[k], e)
	return b
}

// AddTriangle registers a spinning triangle at pos.
func (b *Builder) AddTriangle(pos mgl32.Vec3) *Builder {
	return b.Add(NewTriangle(pos))
}

// AddQuad registers a stationary quad at pos.
func (b *Builder) AddQuad(pos mgl32.Vec3) *Builder {
	return b.Add(NewQuad(pos))
}

// WithCamera sets the camera. Without one the scene uses a camera at the
// origin looking along +X.
func (b *Builder) WithCamera(c *Camera) *Builder {
	b.camera = c
	return b
}

// Counts returns the instance counts registered so far.
func (b *Builder) Counts() Counts {
	var c Counts
	for _, k := range DrawOrder {
		c[k] = len(b.entities[k])
	}
	return c
}

// Build validates the registered entities against the capacity and
// returns the scene. A scene that would overflow its arena is never built.
func (b *Builder) Build() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, b.capacity)
	}
	counts := b.Counts()
	if total := counts.Total(); total > b.capacity {
		return nil, fmt.Errorf("%w: %d entities (%s) for %d slots",
			ErrCapacityExceeded, total, counts, b.capacity)
	}

	cam := b.camera
	if cam == nil {
		cam = NewCamera(mgl32.Vec3{}, 0, 0)
	}

	s := &Scene{
		camera: cam,
		arena:  NewArena(b.capacity),
		counts: counts,
	}
	for _, k := range DrawOrder {
		s.entities[k] = append([]Entity(nil), b.entities[k]...)
	}
	return s, nil
}
