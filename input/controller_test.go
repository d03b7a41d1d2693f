package input

import (
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fpv/scene"
)

func TestControllerKeys(t *testing.T) {
	tests := []struct {
		name string
		down []gpucontext.Key
		up   []gpucontext.Key
		want scene.Velocity
	}{
		{"idle", nil, nil, scene.Velocity{}},
		{"forward", []gpucontext.Key{gpucontext.KeyW}, nil, scene.Velocity{Forward: DefaultSpeed}},
		{"back", []gpucontext.Key{gpucontext.KeyS}, nil, scene.Velocity{Forward: -DefaultSpeed}},
		{"right", []gpucontext.Key{gpucontext.KeyD}, nil, scene.Velocity{Strafe: DefaultSpeed}},
		{"left", []gpucontext.Key{gpucontext.KeyA}, nil, scene.Velocity{Strafe: -DefaultSpeed}},
		{"diagonal", []gpucontext.Key{gpucontext.KeyW, gpucontext.KeyA}, nil,
			scene.Velocity{Forward: DefaultSpeed, Strafe: -DefaultSpeed}},
		{"released", []gpucontext.Key{gpucontext.KeyW}, []gpucontext.Key{gpucontext.KeyW}, scene.Velocity{}},
		{"stale release ignored", []gpucontext.Key{gpucontext.KeyW, gpucontext.KeyS}, []gpucontext.Key{gpucontext.KeyW},
			scene.Velocity{Forward: -DefaultSpeed}},
		{"other keys", []gpucontext.Key{gpucontext.KeyQ, gpucontext.KeySpace}, nil, scene.Velocity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			for _, k := range tt.down {
				c.KeyDown(k)
			}
			for _, k := range tt.up {
				c.KeyUp(k)
			}
			if got := c.Command().Velocity; got != tt.want {
				t.Errorf("Velocity = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestControllerPointer(t *testing.T) {
	c := NewController()
	c.PointerMoved(10, 20)
	c.PointerMoved(5, -10)

	cmd := c.Command()
	if cmd.SpinX != 1.5 || cmd.SpinY != -1 {
		t.Errorf("spin = (%v, %v), want (1.5, -1)", cmd.SpinX, cmd.SpinY)
	}
	if again := c.Command(); again.SpinX != 0 || again.SpinY != 0 {
		t.Errorf("spin not drained: (%v, %v)", again.SpinX, again.SpinY)
	}
}

func TestControllerLookToggle(t *testing.T) {
	c := NewController()
	if !c.Looking() {
		t.Fatal("look mode should start on")
	}
	c.KeyDown(gpucontext.KeyG)
	c.PointerMoved(100, 100)
	if cmd := c.Command(); !cmd.IsZero() {
		t.Errorf("Command() = %+v with look off, want zero", cmd)
	}
	c.KeyDown(gpucontext.KeyG)
	c.PointerMoved(10, 0)
	if cmd := c.Command(); cmd.SpinX != 1 {
		t.Errorf("SpinX = %v, want 1", cmd.SpinX)
	}
	c.KeyDown(gpucontext.KeyEscape)
	if c.Looking() {
		t.Error("Escape should leave look mode")
	}
}

type fakeSource struct {
	press, release func(gpucontext.Key, gpucontext.Modifiers)
	pointer        func(gpucontext.PointerEvent)
}

func (f *fakeSource) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { f.press = fn }
func (f *fakeSource) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { f.release = fn }
func (f *fakeSource) OnPointer(fn func(gpucontext.PointerEvent))                 { f.pointer = fn }

func TestControllerAttach(t *testing.T) {
	src := &fakeSource{}
	c := NewController()
	c.Attach(src, src)

	src.press(gpucontext.KeyD, 0)
	src.pointer(gpucontext.PointerEvent{Type: gpucontext.PointerMove, DeltaX: -10, DeltaY: 10})
	src.pointer(gpucontext.PointerEvent{Type: gpucontext.PointerDown, DeltaX: 50})

	cmd := c.Command()
	if cmd.Velocity.Strafe != DefaultSpeed {
		t.Errorf("Strafe = %v, want %v", cmd.Velocity.Strafe, DefaultSpeed)
	}
	if cmd.SpinX != -1 || cmd.SpinY != -1 {
		t.Errorf("spin = (%v, %v), want (-1, -1)", cmd.SpinX, cmd.SpinY)
	}

	src.release(gpucontext.KeyD, 0)
	if got := c.Command().Velocity; !got.IsZero() {
		t.Errorf("Velocity after release = %+v, want zero", got)
	}
}
