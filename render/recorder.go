package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/fpv/scene"
)

// ErrNoFrame is returned by Recorder when a command arrives outside
// BeginFrame/EndFrame.
var ErrNoFrame = errors.New("render: no frame in progress")

// Upload is one recorded buffer write.
type Upload struct {
	Buffer  BufferID
	Offset  uint64
	Data    []byte
	Uniform bool
}

// Frame is everything recorded between BeginFrame and EndFrame.
type Frame struct {
	Target  Target
	Uploads []Upload
	Draws   []DrawCommand
	Aborted bool
}

// Recorder is an in-memory Device that records every call. It backs tests
// and headless runs that have no GPU.
type Recorder struct {
	// Size is the target returned by BeginFrame.
	Size Target
	// Keep limits how many finished frames are retained. Zero keeps all.
	Keep int

	frames  []Frame
	current *Frame
	buffers map[BufferID][]byte
}

// NewRecorder returns a Recorder reporting a width x height target.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		Size:    Target{Width: width, Height: height},
		buffers: make(map[BufferID][]byte),
	}
}

// BeginFrame starts recording a frame.
func (r *Recorder) BeginFrame() (Target, error) {
	if r.current != nil {
		return Target{}, errors.New("render: frame already in progress")
	}
	r.current = &Frame{Target: r.Size}
	return r.Size, nil
}

// UploadBuffer records a buffer write and applies it to the shadow copy.
func (r *Recorder) UploadBuffer(buf BufferID, offset uint64, data []byte) error {
	return r.upload(buf, offset, data, false)
}

// UploadUniform records a uniform write and applies it to the shadow copy.
func (r *Recorder) UploadUniform(buf BufferID, offset uint64, data []byte) error {
	return r.upload(buf, offset, data, true)
}

func (r *Recorder) upload(buf BufferID, offset uint64, data []byte, uniform bool) error {
	if r.current == nil {
		return ErrNoFrame
	}
	cp := append([]byte(nil), data...)
	r.current.Uploads = append(r.current.Uploads, Upload{Buffer: buf, Offset: offset, Data: cp, Uniform: uniform})

	shadow := r.buffers[buf]
	if end := int(offset) + len(data); end > len(shadow) {
		shadow = append(shadow, make([]byte, end-len(shadow))...)
	}
	copy(shadow[offset:], data)
	r.buffers[buf] = shadow
	return nil
}

// SubmitDraw records a draw.
func (r *Recorder) SubmitDraw(cmd DrawCommand) error {
	if r.current == nil {
		return ErrNoFrame
	}
	if cmd.InstanceCount == 0 {
		return fmt.Errorf("render: empty draw for %s", cmd.Kind)
	}
	r.current.Draws = append(r.current.Draws, cmd)
	return nil
}

// EndFrame finishes the current frame.
func (r *Recorder) EndFrame() error {
	if r.current == nil {
		return ErrNoFrame
	}
	r.finish()
	return nil
}

// AbortFrame keeps the partial frame, marked as aborted.
func (r *Recorder) AbortFrame() {
	if r.current == nil {
		return
	}
	r.current.Aborted = true
	r.finish()
}

func (r *Recorder) finish() {
	r.frames = append(r.frames, *r.current)
	r.current = nil
	if r.Keep > 0 && len(r.frames) > r.Keep {
		r.frames = append(r.frames[:0], r.frames[len(r.frames)-r.Keep:]...)
	}
}

// Frames returns the retained frames, oldest first.
func (r *Recorder) Frames() []Frame { return r.frames }

// Last returns the most recent frame.
func (r *Recorder) Last() (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Buffer returns the shadow contents of buf.
func (r *Recorder) Buffer(buf BufferID) []byte { return r.buffers[buf] }

var (
	_ Device       = (*Recorder)(nil)
	_ FrameAborter = (*Recorder)(nil)
)

// Resources returns placeholder IDs for drawing on a Recorder, with
// triangle and quad meshes of 3 and 6 vertices.
func (r *Recorder) Resources(capacity int) Resources {
	res := Resources{
		Pipeline:       1,
		InstanceBuffer: 1,
		UniformBuffer:  2,
		Capacity:       capacity,
	}
	res.Meshes[scene.KindTriangle] = Mesh{Bindings: 1, VertexCount: 3}
	res.Meshes[scene.KindQuad] = Mesh{Bindings: 2, VertexCount: 6}
	return res
}
