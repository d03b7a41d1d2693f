package scene

import "github.com/go-gl/mathgl/mgl32"

// RenderData is the per-frame snapshot handed to the renderer. Transforms
// aliases the scene's arena and is only valid until the next Update.
type RenderData struct {
	View       mgl32.Mat4
	Transforms []float32
	Counts     Counts
}

// Instances returns the number of packed matrices in Transforms.
func (rd RenderData) Instances() int { return len(rd.Transforms) / FloatsPerSlot }

// Scene owns the entities, the camera and the packed transform arena.
// The entity set is fixed when the scene is built, so every entity keeps
// the same arena slot for the scene's lifetime.
//
// Scene is not safe for concurrent use. Update must complete before the
// RenderData it produces is consumed.
type Scene struct {
	entities [NumShapes][]Entity
	camera   *Camera
	arena    *Arena
	counts   Counts
}

// Update recomputes the camera view and every entity's model matrix, and
// writes each matrix into its slot in DrawOrder.
func (s *Scene) Update() {
	s.camera.Update()
	slot := 0
	for _, k := range DrawOrder {
		for _, e := range s.entities[k] {
			e.Update()
			s.arena.Put(slot, e.Model())
			slot++
		}
	}
}

// MoveCamera moves the camera by v along its current forward and right
// axes. The view reflects the move after the next Update.
func (s *Scene) MoveCamera(v Velocity) {
	s.camera.Move(v)
}

// Spin turns the camera by dx degrees of yaw and dy degrees of pitch.
func (s *Scene) Spin(dx, dy float32) {
	s.camera.Spin(dx, dy)
}

// RenderData returns the view matrix, the packed prefix of the arena and
// the instance counts.
func (s *Scene) RenderData() RenderData {
	return RenderData{
		View:       s.camera.View(),
		Transforms: s.arena.Floats(s.counts.Total()),
		Counts:     s.counts,
	}
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera { return s.camera }

// Counts returns the instance count of every drawable kind.
func (s *Scene) Counts() Counts { return s.counts }

// Capacity returns the number of arena slots.
func (s *Scene) Capacity() int { return s.arena.Cap() }

// Len returns the total number of drawable entities.
func (s *Scene) Len() int { return s.counts.Total() }

// Entities returns the entities of kind k in packing order.
func (s *Scene) Entities(k Kind) []Entity {
	if !k.Drawable() {
		return nil
	}
	return s.entities[k]
}

// Slot returns the arena slot of the i-th entity of kind k.
func (s *Scene) Slot(k Kind, i int) int {
	return s.counts.Base(k) + i
}

// Matrix returns the packed matrix in slot.
func (s *Scene) Matrix(slot int) mgl32.Mat4 { return s.arena.Slot(slot) }
