package gpu

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fpv/render"
	"github.com/gogpu/fpv/scene"
)

// createNoopDevice opens the noop backend for tests.
func createNoopDevice(t *testing.T) *Standalone {
	t.Helper()
	s, err := OpenBackend("noop")
	if err != nil {
		t.Fatalf("OpenBackend(noop) failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func newSetUpDevice(t *testing.T, cfg Config) (*Device, render.Resources) {
	t.Helper()
	s := createNoopDevice(t)
	d, err := New(s.Device, s.Queue, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := d.Setup(Materials{})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d, res
}

// readBuffer copies size bytes of a device buffer through MapBuffer.
func readBuffer(t *testing.T, d *Device, id render.BufferID, size uint64) []byte {
	t.Helper()
	entry, ok := d.buffers.get(uint32(id))
	if !ok {
		t.Fatalf("buffer %d not registered", id)
	}
	mapping, err := d.device.MapBuffer(entry.buf, 0, size)
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	defer func() { _ = d.device.UnmapBuffer(entry.buf) }()
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	return out
}

func TestOpenBackendUnknown(t *testing.T) {
	if _, err := OpenBackend("metal-ish"); err == nil {
		t.Error("OpenBackend(unknown) should fail")
	}
}

func TestNewDefaults(t *testing.T) {
	s := createNoopDevice(t)
	d, err := New(s.Device, s.Queue, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, want := d.Config(), DefaultConfig()
	if got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}
	if _, err := New(nil, s.Queue, Config{}); err == nil {
		t.Error("New(nil device) should fail")
	}
}

func TestNewFromProviderRejectsNullHandle(t *testing.T) {
	if _, err := NewFromProvider(render.NullDeviceHandle{}, Config{}); err == nil {
		t.Error("NewFromProvider(NullDeviceHandle) should fail")
	}
}

func TestSetupResources(t *testing.T) {
	d, res := newSetUpDevice(t, Config{Capacity: 16})

	if res.Capacity != 16 {
		t.Errorf("Capacity = %d, want 16", res.Capacity)
	}
	if res.Pipeline == 0 || res.InstanceBuffer == 0 || res.UniformBuffer == 0 {
		t.Fatalf("Setup returned zero IDs: %+v", res)
	}
	if res.InstanceBuffer == res.UniformBuffer {
		t.Errorf("instance and uniform buffers share id %d", res.InstanceBuffer)
	}
	wantVerts := [scene.NumShapes]uint32{scene.KindTriangle: 3, scene.KindQuad: 6}
	for _, k := range scene.DrawOrder {
		m := res.Meshes[k]
		if m.VertexCount != wantVerts[k] {
			t.Errorf("%s VertexCount = %d, want %d", k, m.VertexCount, wantVerts[k])
		}
		if _, ok := d.bindings.get(uint32(m.Bindings)); !ok {
			t.Errorf("%s bindings %d not registered", k, m.Bindings)
		}
	}
	inst, _ := d.buffers.get(uint32(res.InstanceBuffer))
	if inst.size != 16*64 {
		t.Errorf("instance buffer size = %d, want %d", inst.size, 16*64)
	}
	if _, err := d.Setup(Materials{}); err == nil {
		t.Error("second Setup should fail")
	}
}

func TestBeginFrameBeforeSetup(t *testing.T) {
	s := createNoopDevice(t)
	d, _ := New(s.Device, s.Queue, Config{})
	if _, err := d.BeginFrame(); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("BeginFrame() error = %v, want ErrNotSetUp", err)
	}
}

func TestFrameLifecycle(t *testing.T) {
	d, res := newSetUpDevice(t, Config{Width: 64, Height: 32})

	if err := d.SubmitDraw(render.DrawCommand{InstanceCount: 1}); !errors.Is(err, ErrNoFrame) {
		t.Errorf("SubmitDraw outside frame = %v, want ErrNoFrame", err)
	}
	if err := d.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame outside frame = %v, want ErrNoFrame", err)
	}

	target, err := d.BeginFrame()
	if err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if target.Width != 64 || target.Height != 32 {
		t.Errorf("target = %+v, want 64x32", target)
	}
	if _, err := d.BeginFrame(); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("nested BeginFrame = %v, want ErrFrameInProgress", err)
	}
	err = d.SubmitDraw(render.DrawCommand{
		Kind:          scene.KindQuad,
		Pipeline:      res.Pipeline,
		Bindings:      99,
		VertexCount:   6,
		InstanceCount: 1,
	})
	if !errors.Is(err, ErrUnknownResource) {
		t.Errorf("SubmitDraw(bad bindings) = %v, want ErrUnknownResource", err)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}
	if d.ColorTexture() == nil {
		t.Error("ColorTexture() = nil after offscreen frame")
	}

	// Resize recreates the targets on the next frame.
	d.Resize(128, 128)
	target, err = d.BeginFrame()
	if err != nil {
		t.Fatalf("BeginFrame after resize failed: %v", err)
	}
	d.AbortFrame()
	if target.Width != 128 || target.Height != 128 {
		t.Errorf("target after resize = %+v, want 128x128", target)
	}
	if d.targets.width != 128 {
		t.Errorf("targets.width = %d, want 128", d.targets.width)
	}
}

func TestUploadBounds(t *testing.T) {
	d, res := newSetUpDevice(t, Config{Capacity: 2})

	tests := []struct {
		name    string
		upload  func() error
		wantErr bool
	}{
		{"instance fits", func() error { return d.UploadBuffer(res.InstanceBuffer, 0, make([]byte, 128)) }, false},
		{"instance overflow", func() error { return d.UploadBuffer(res.InstanceBuffer, 64, make([]byte, 128)) }, true},
		{"uniform fits", func() error { return d.UploadUniform(res.UniformBuffer, 0, make([]byte, render.UniformSize)) }, false},
		{"uniform as storage", func() error { return d.UploadBuffer(res.UniformBuffer, 0, make([]byte, 4)) }, true},
		{"unknown buffer", func() error { return d.UploadBuffer(42, 0, make([]byte, 4)) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload()
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRendererOnNoopDevice(t *testing.T) {
	d, res := newSetUpDevice(t, Config{Capacity: 8, Width: 300, Height: 300})

	s, err := scene.NewBuilder(8).
		AddTriangle(mgl32.Vec3{2, 0, 0}).
		AddQuad(mgl32.Vec3{5, 0, 0}).
		AddQuad(mgl32.Vec3{5, 1, 0}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	r, err := render.NewRenderer(d, res)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	s.Update()
	if err := r.Render(s.RenderData()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	st := r.Stats()
	if st.Draws != 2 || st.Instances != 3 {
		t.Errorf("Stats = %+v, want 2 draws and 3 instances", st)
	}

	// Slot 2 is the second quad: translation (5, 1, 0).
	data := readBuffer(t, d, res.InstanceBuffer, 3*64)
	col3 := data[2*64+12*4:]
	got := [3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(col3[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(col3[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(col3[8:])),
	}
	if got != [3]float32{5, 1, 0} {
		t.Errorf("slot 2 translation = %v, want [5 1 0]", got)
	}

	// The uniform starts with the view matrix.
	uni := readBuffer(t, d, res.UniformBuffer, render.UniformSize)
	view := s.Camera().View()
	if v := math.Float32frombits(binary.LittleEndian.Uint32(uni[0:])); v != view[0] {
		t.Errorf("uniform[0] = %v, want %v", v, view[0])
	}
}

func TestSetupWithLoadedMaterial(t *testing.T) {
	s := createNoopDevice(t)
	d, _ := New(s.Device, s.Queue, Config{MaxTextureSize: 16})
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var m Materials
	m[scene.KindQuad] = img
	if _, err := d.Setup(m); err != nil {
		t.Fatalf("Setup with material failed: %v", err)
	}
	d.Destroy()
	// Destroy is idempotent.
	d.Destroy()
}

var errBeginEncoding = errors.New("begin encoding refused")

// refusingEncoder fails BeginEncoding and records whether it was discarded.
type refusingEncoder struct {
	hal.CommandEncoder
	discarded bool
}

func (e *refusingEncoder) BeginEncoding(string) error { return errBeginEncoding }
func (e *refusingEncoder) DiscardEncoding()           { e.discarded = true }

type refusingEncoderDevice struct {
	hal.Device
	enc *refusingEncoder
}

func (d *refusingEncoderDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	inner, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	d.enc = &refusingEncoder{CommandEncoder: inner}
	return d.enc, nil
}

func TestBeginFrameDiscardsEncoderOnFailure(t *testing.T) {
	d, _ := newSetUpDevice(t, Config{Width: 16, Height: 16})
	orig := d.device
	wrapped := &refusingEncoderDevice{Device: orig}
	d.device = wrapped

	if _, err := d.BeginFrame(); !errors.Is(err, errBeginEncoding) {
		t.Fatalf("BeginFrame() error = %v, want begin encoding failure", err)
	}
	if wrapped.enc == nil || !wrapped.enc.discarded {
		t.Error("encoder was not discarded after BeginEncoding failed")
	}

	// The failed frame leaves no frame open.
	d.device = orig
	if _, err := d.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() after failure = %v", err)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}
}
