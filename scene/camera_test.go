package scene

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraBasis(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		forward    mgl32.Vec3
		right      mgl32.Vec3
		up         mgl32.Vec3
	}{
		{"facing +X", 0, 0, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, 1}},
		{"facing +Y", 90, 0, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{"facing -X", 180, 0, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(mgl32.Vec3{}, tt.yaw, tt.pitch)
			if f := c.Forward(); !approxEqual(f[:], tt.forward[:]) {
				t.Errorf("Forward() = %v, want %v", c.Forward(), tt.forward)
			}
			if r := c.Right(); !approxEqual(r[:], tt.right[:]) {
				t.Errorf("Right() = %v, want %v", c.Right(), tt.right)
			}
			if u := c.Up(); !approxEqual(u[:], tt.up[:]) {
				t.Errorf("Up() = %v, want %v", c.Up(), tt.up)
			}
		})
	}
}

func TestCameraBasisOrthonormal(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		c := NewCamera(mgl32.Vec3{}, r.Float32()*360, (r.Float32()*2-1)*MaxPitch)
		f, rt, up := c.Forward(), c.Right(), c.Up()
		for _, l := range []float32{f.Len(), rt.Len(), up.Len()} {
			if math.Abs(float64(l-1)) > 1e-4 {
				t.Fatalf("yaw=%v pitch=%v: basis length %v, want 1", c.Yaw, c.Pitch, l)
			}
		}
		if d := f.Dot(rt); math.Abs(float64(d)) > 1e-4 {
			t.Fatalf("forward·right = %v, want 0", d)
		}
		if d := f.Dot(up); math.Abs(float64(d)) > 1e-4 {
			t.Fatalf("forward·up = %v, want 0", d)
		}
	}
}

func TestCameraViewLooksForward(t *testing.T) {
	c := NewCamera(mgl32.Vec3{-2, 0, 0.5}, 0, 0)
	// A point straight ahead lands on the view -Z axis.
	p := c.View().Mul4x1(mgl32.Vec4{1, 0, 0.5, 1})
	want := mgl32.Vec4{0, 0, -3, 1}
	if !approxEqual(p[:], want[:]) {
		t.Errorf("view * ahead = %v, want %v", p, want)
	}
}

func TestCameraPitchClamped(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	c := NewCamera(mgl32.Vec3{}, 0, 0)
	for i := 0; i < 1000; i++ {
		dx := (r.Float32()*2 - 1) * 1000
		dy := (r.Float32()*2 - 1) * 1000
		c.Spin(dx, dy)
		if c.Pitch < -MaxPitch || c.Pitch > MaxPitch {
			t.Fatalf("spin %d: Pitch = %v, out of range", i, c.Pitch)
		}
		if c.Yaw < 0 || c.Yaw >= 360 {
			t.Fatalf("spin %d: Yaw = %v, out of [0, 360)", i, c.Yaw)
		}
	}
}

func TestCameraSpinEdges(t *testing.T) {
	tests := []struct {
		name           string
		dx, dy         float32
		yaw, pitch     float32
		wantYaw, wantP float32
	}{
		{"yaw wraps below zero", 10, 0, 0, 0, 350, 0},
		{"yaw wraps above 360", -370, 0, 0, 0, 10, 0},
		{"pitch clamps up", 0, 500, 0, 0, 0, MaxPitch},
		{"pitch clamps down", 0, -500, 0, 0, 0, -MaxPitch},
		{"nan ignored", float32(math.NaN()), float32(math.NaN()), 30, 10, 30, 10},
		{"inf ignored", float32(math.Inf(1)), float32(math.Inf(-1)), 30, 10, 30, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(mgl32.Vec3{}, tt.yaw, tt.pitch)
			c.Spin(tt.dx, tt.dy)
			if c.Yaw != tt.wantYaw || c.Pitch != tt.wantP {
				t.Errorf("Yaw, Pitch = %v, %v, want %v, %v", c.Yaw, c.Pitch, tt.wantYaw, tt.wantP)
			}
		})
	}
}

func TestCameraMoveUsesLatestHeading(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 0, 0)
	c.Spin(-90, 0) // now facing +Y
	c.Move(Velocity{Forward: 1, Strafe: 0.5})
	want := mgl32.Vec3{0.5, 1, 0}
	if !approxEqual(c.Position[:], want[:]) {
		t.Errorf("Position = %v, want %v", c.Position, want)
	}
}

func TestCameraUpdateNormalizesFields(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 0, 0)
	c.Yaw = -30
	c.Pitch = 120
	c.Update()
	if c.Yaw != 330 || c.Pitch != MaxPitch {
		t.Errorf("Yaw, Pitch = %v, %v, want 330, %v", c.Yaw, c.Pitch, MaxPitch)
	}
	if f := c.Forward(); f.Z() >= 1 {
		t.Errorf("Forward() = %v, basis collapsed onto WorldUp", f)
	}
}
