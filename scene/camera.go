package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch bounds the camera pitch in degrees. Looking straight up or down
// would make forward parallel to WorldUp and collapse the basis.
const MaxPitch = 89

// WorldUp is the fixed up axis of the world. The world is Z-up.
var WorldUp = mgl32.Vec3{0, 0, 1}

// Velocity is a per-tick camera motion along the forward and right axes.
type Velocity struct {
	Forward float32
	Strafe  float32
}

// IsZero reports whether v moves the camera at all.
func (v Velocity) IsZero() bool { return v.Forward == 0 && v.Strafe == 0 }

// Camera is the first-person viewpoint. Yaw rotates about WorldUp starting
// from +X; pitch tilts toward WorldUp. Both are in degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	forward mgl32.Vec3
	right   mgl32.Vec3
	up      mgl32.Vec3
	view    mgl32.Mat4
}

// NewCamera returns a camera at pos with the given orientation and an
// up-to-date basis and view.
func NewCamera(pos mgl32.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{Position: pos, Yaw: yaw, Pitch: pitch}
	c.Update()
	return c
}

// Update wraps yaw into [0, 360), clamps pitch to [-MaxPitch, MaxPitch],
// recomputes the basis vectors and rebuilds the view matrix from the
// current position.
func (c *Camera) Update() {
	c.Yaw = wrapDegrees(c.Yaw)
	c.Pitch = clampPitch(c.Pitch)
	c.updateBasis()
	c.view = mgl32.LookAtV(c.Position, c.Position.Add(c.forward), c.up)
}

func (c *Camera) updateBasis() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	c.forward = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
	}
	c.right = c.forward.Cross(WorldUp).Normalize()
	c.up = c.right.Cross(c.forward)
}

// Spin turns the camera: yaw -= dx wrapped into [0, 360), pitch += dy
// clamped to [-MaxPitch, MaxPitch]. Non-finite deltas are ignored.
// The basis is refreshed immediately so a following Move uses the new
// heading; the view is rebuilt on the next Update.
func (c *Camera) Spin(dx, dy float32) {
	if finite(dx) {
		c.Yaw -= dx
	}
	if finite(dy) {
		c.Pitch += dy
	}
	c.Yaw = wrapDegrees(c.Yaw)
	c.Pitch = clampPitch(c.Pitch)
	c.updateBasis()
}

// Move advances the position by v.Forward along forward and v.Strafe
// along right.
func (c *Camera) Move(v Velocity) {
	if v.IsZero() {
		return
	}
	c.Position = c.Position.Add(c.forward.Mul(v.Forward)).Add(c.right.Mul(v.Strafe))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 { return c.forward }

// Right returns the unit right vector.
func (c *Camera) Right() mgl32.Vec3 { return c.right }

// Up returns the camera up vector.
func (c *Camera) Up() mgl32.Vec3 { return c.up }

// View returns the view matrix computed by the last Update.
func (c *Camera) View() mgl32.Mat4 { return c.view }

func clampPitch(p float32) float32 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	return p
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
