// Package input maps keyboard and pointer events to first-person camera
// commands. It holds no rendering state.
package input

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fpv/scene"
)

// Defaults for Controller.
const (
	DefaultSpeed       = 0.05
	DefaultSensitivity = 0.1
)

// Command is the camera input for one tick.
type Command struct {
	Velocity scene.Velocity
	// SpinX and SpinY are yaw and pitch deltas in degrees, in the sense of
	// scene.Camera.Spin.
	SpinX float32
	SpinY float32
}

// IsZero reports whether c changes the camera.
func (c Command) IsZero() bool {
	return c.Velocity.IsZero() && c.SpinX == 0 && c.SpinY == 0
}

// KeySource delivers key events. gpucontext.EventSource satisfies it.
type KeySource interface {
	OnKeyPress(func(key gpucontext.Key, mods gpucontext.Modifiers))
	OnKeyRelease(func(key gpucontext.Key, mods gpucontext.Modifiers))
}

// Controller turns key and pointer state into Commands.
//
// W/S move forward and back, D/A strafe right and left. G toggles look
// mode and Escape leaves it; pointer motion only turns the camera while
// look mode is on.
//
// Controller is not safe for concurrent use; feed it from the event thread
// that also calls Command.
type Controller struct {
	Speed       float32
	Sensitivity float32

	velocity scene.Velocity
	spinX    float32
	spinY    float32
	look     bool
}

// NewController returns a controller with default speed and sensitivity
// and look mode on.
func NewController() *Controller {
	return &Controller{Speed: DefaultSpeed, Sensitivity: DefaultSensitivity, look: true}
}

// Attach subscribes the controller to keys and, if ps is non-nil, to
// pointer events.
func (c *Controller) Attach(keys KeySource, ps gpucontext.PointerEventSource) {
	if keys != nil {
		keys.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) { c.KeyDown(k) })
		keys.OnKeyRelease(func(k gpucontext.Key, _ gpucontext.Modifiers) { c.KeyUp(k) })
	}
	if ps != nil {
		ps.OnPointer(c.HandlePointer)
	}
}

// KeyDown handles a key press.
func (c *Controller) KeyDown(k gpucontext.Key) {
	switch k {
	case gpucontext.KeyW:
		c.velocity.Forward = c.Speed
	case gpucontext.KeyS:
		c.velocity.Forward = -c.Speed
	case gpucontext.KeyD:
		c.velocity.Strafe = c.Speed
	case gpucontext.KeyA:
		c.velocity.Strafe = -c.Speed
	case gpucontext.KeyG:
		c.look = !c.look
	case gpucontext.KeyEscape:
		c.look = false
	}
}

// KeyUp handles a key release. Releasing a key only stops the motion it
// started, so holding W while tapping S keeps no stale state.
func (c *Controller) KeyUp(k gpucontext.Key) {
	switch k {
	case gpucontext.KeyW:
		if c.velocity.Forward > 0 {
			c.velocity.Forward = 0
		}
	case gpucontext.KeyS:
		if c.velocity.Forward < 0 {
			c.velocity.Forward = 0
		}
	case gpucontext.KeyD:
		if c.velocity.Strafe > 0 {
			c.velocity.Strafe = 0
		}
	case gpucontext.KeyA:
		if c.velocity.Strafe < 0 {
			c.velocity.Strafe = 0
		}
	}
}

// HandlePointer feeds relative motion from PointerMove events.
func (c *Controller) HandlePointer(ev gpucontext.PointerEvent) {
	if ev.Type != gpucontext.PointerMove {
		return
	}
	c.PointerMoved(float32(ev.DeltaX), float32(ev.DeltaY))
}

// PointerMoved accumulates a relative pointer motion in pixels. Moving
// right turns right; moving down looks down.
func (c *Controller) PointerMoved(dx, dy float32) {
	if !c.look {
		return
	}
	c.spinX += dx * c.Sensitivity
	c.spinY -= dy * c.Sensitivity
}

// Looking reports whether look mode is on.
func (c *Controller) Looking() bool { return c.look }

// SetLooking turns look mode on or off.
func (c *Controller) SetLooking(on bool) { c.look = on }

// Command returns the current velocity and the spin accumulated since the
// last call.
func (c *Controller) Command() Command {
	cmd := Command{Velocity: c.velocity, SpinX: c.spinX, SpinY: c.spinY}
	c.spinX, c.spinY = 0, 0
	return cmd
}
