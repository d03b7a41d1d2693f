package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSpinStep is the per-tick rotation of a triangle, in degrees.
const DefaultSpinStep = 2

// Entity is a drawable object that recomputes its model matrix on Update.
//
// Update is not pure: calling it again advances time-dependent state such
// as a triangle's spin.
type Entity interface {
	Kind() Kind
	Update()
	Model() mgl32.Mat4
}

// Triangle spins about the Z axis at its position.
type Triangle struct {
	Position mgl32.Vec3
	// Yaw is the current rotation about Z, in degrees within [0, 360).
	Yaw float32
	// SpinStep is added to Yaw on every update.
	SpinStep float32

	model mgl32.Mat4
}

// NewTriangle returns a triangle at pos with the default spin step.
func NewTriangle(pos mgl32.Vec3) *Triangle {
	return &Triangle{Position: pos, SpinStep: DefaultSpinStep, model: mgl32.Ident4()}
}

// Kind returns KindTriangle.
func (t *Triangle) Kind() Kind { return KindTriangle }

// Update advances the spin and rebuilds the model as translate then rotate.
func (t *Triangle) Update() {
	t.Yaw = wrapDegrees(t.Yaw + t.SpinStep)
	t.model = mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Yaw)))
}

// Model returns the matrix computed by the last Update.
func (t *Triangle) Model() mgl32.Mat4 { return t.model }

// Quad is a stationary quad. Its model is a pure translation.
type Quad struct {
	Position mgl32.Vec3

	model mgl32.Mat4
}

// NewQuad returns a quad at pos.
func NewQuad(pos mgl32.Vec3) *Quad {
	return &Quad{Position: pos, model: mgl32.Ident4()}
}

// Kind returns KindQuad.
func (q *Quad) Kind() Kind { return KindQuad }

// Update rebuilds the translation matrix.
func (q *Quad) Update() {
	q.model = mgl32.Translate3D(q.Position.X(), q.Position.Y(), q.Position.Z())
}

// Model returns the matrix computed by the last Update.
func (q *Quad) Model() mgl32.Mat4 { return q.model }

// wrapDegrees maps a into [0, 360).
func wrapDegrees(a float32) float32 {
	w := float32(math.Mod(float64(a), 360))
	if w < 0 {
		w += 360
	}
	// -tiny + 360 rounds to 360 in float32
	if w >= 360 {
		w = 0
	}
	return w
}
