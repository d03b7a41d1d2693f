package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fpv/render"
)

// targetSet holds the offscreen color texture and the depth attachment.
type targetSet struct {
	width, height uint32

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

func (t *targetSet) destroy(device hal.Device) {
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depth != nil {
		device.DestroyTexture(t.depth)
		t.depth = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.color != nil {
		device.DestroyTexture(t.color)
		t.color = nil
	}
	t.width, t.height = 0, 0
}

// frameState is the encoder and pass of the frame being recorded.
type frameState struct {
	encoder  hal.CommandEncoder
	pass     hal.RenderPassEncoder
	pipeline render.PipelineID
	draws    int
}

// SetSurfaceTarget makes subsequent frames render into view, which the
// caller owns and presents. A nil view switches back to the offscreen
// target.
func (d *Device) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	d.surfaceView = view
	d.surfaceWidth = width
	d.surfaceHeight = height
}

// Resize changes the offscreen target size. The textures are recreated on
// the next frame.
func (d *Device) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	d.cfg.Width, d.cfg.Height = width, height
}

// ColorTexture returns the offscreen color texture of the last frame, or
// nil when rendering to a surface or before the first frame.
func (d *Device) ColorTexture() hal.Texture { return d.targets.color }

// frameSize returns the size of the current render target.
func (d *Device) frameSize() (uint32, uint32) {
	if d.surfaceView != nil {
		return d.surfaceWidth, d.surfaceHeight
	}
	return d.cfg.Width, d.cfg.Height
}

// ensureTargets (re)creates the color and depth textures when the target
// size changed. The color texture is only created for offscreen frames.
func (d *Device) ensureTargets(w, h uint32) error {
	offscreen := d.surfaceView == nil
	t := &d.targets
	if t.width == w && t.height == h && t.depthView != nil && (!offscreen || t.colorView != nil) {
		return nil
	}
	t.destroy(d.device)

	if offscreen {
		tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         "frame_color",
			Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        d.cfg.ColorFormat,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("create color target: %w", err)
		}
		t.color = tex
		t.colorView, err = d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:         "frame_color_view",
			Format:        d.cfg.ColorFormat,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			t.destroy(d.device)
			return fmt.Errorf("create color target view: %w", err)
		}
	}

	depth, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "frame_depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.cfg.DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.destroy(d.device)
		return fmt.Errorf("create depth target: %w", err)
	}
	t.depth = depth
	t.depthView, err = d.device.CreateTextureView(depth, &hal.TextureViewDescriptor{
		Label:         "frame_depth_view",
		Format:        d.cfg.DepthFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectDepthOnly,
		MipLevelCount: 1,
	})
	if err != nil {
		t.destroy(d.device)
		return fmt.Errorf("create depth target view: %w", err)
	}
	t.width, t.height = w, h
	slogger().Debug("gpu: frame targets created", "width", w, "height", h, "offscreen", offscreen)
	return nil
}

// BeginFrame creates the frame encoder and opens a render pass that clears
// color and depth.
func (d *Device) BeginFrame() (render.Target, error) {
	if !d.ready {
		return render.Target{}, ErrNotSetUp
	}
	if d.frame != nil {
		return render.Target{}, ErrFrameInProgress
	}
	w, h := d.frameSize()
	if w == 0 || h == 0 {
		return render.Target{}, fmt.Errorf("gpu: zero-sized target %dx%d", w, h)
	}
	if err := d.ensureTargets(w, h); err != nil {
		return render.Target{}, err
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame_encoder"})
	if err != nil {
		return render.Target{}, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		encoder.DiscardEncoding()
		return render.Target{}, fmt.Errorf("begin encoding: %w", err)
	}

	colorView := d.surfaceView
	if colorView == nil {
		colorView = d.targets.colorView
	}
	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: d.cfg.ClearColor,
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            d.targets.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	d.frame = &frameState{encoder: encoder, pass: pass}
	return render.Target{Width: int(w), Height: int(h)}, nil
}

// UploadBuffer writes data into a storage or vertex buffer.
func (d *Device) UploadBuffer(id render.BufferID, offset uint64, data []byte) error {
	return d.write(id, offset, data, false)
}

// UploadUniform writes data into a uniform buffer.
func (d *Device) UploadUniform(id render.BufferID, offset uint64, data []byte) error {
	return d.write(id, offset, data, true)
}

func (d *Device) write(id render.BufferID, offset uint64, data []byte, uniform bool) error {
	entry, ok := d.buffers.get(uint32(id))
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	if entry.uniform != uniform {
		return fmt.Errorf("gpu: buffer %d uniform=%t written as uniform=%t", id, entry.uniform, uniform)
	}
	if offset+uint64(len(data)) > entry.size {
		return fmt.Errorf("gpu: write of %d bytes at %d overflows buffer %d (%d bytes)", len(data), offset, id, entry.size)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.queue.WriteBuffer(entry.buf, offset, data); err != nil {
		return fmt.Errorf("gpu: write buffer %d: %w", id, err)
	}
	return nil
}

// SubmitDraw records one instanced draw into the open render pass.
func (d *Device) SubmitDraw(cmd render.DrawCommand) error {
	f := d.frame
	if f == nil {
		return ErrNoFrame
	}
	if cmd.InstanceCount == 0 {
		return nil
	}
	m, ok := d.bindings.get(uint32(cmd.Bindings))
	if !ok {
		return fmt.Errorf("%w: binding set %d", ErrUnknownResource, cmd.Bindings)
	}
	if f.pipeline != cmd.Pipeline {
		p, ok := d.pipelines.get(uint32(cmd.Pipeline))
		if !ok {
			return fmt.Errorf("%w: pipeline %d", ErrUnknownResource, cmd.Pipeline)
		}
		f.pass.SetPipeline(p)
		f.pipeline = cmd.Pipeline
	}
	f.pass.SetBindGroup(0, m.bindGroup, nil)
	f.pass.SetVertexBuffer(0, m.vertexBuf, 0)
	f.pass.Draw(cmd.VertexCount, cmd.InstanceCount, 0, cmd.BaseInstance)
	f.draws++
	return nil
}

// EndFrame closes the pass, submits the command buffer and waits for the
// GPU to finish.
func (d *Device) EndFrame() error {
	f := d.frame
	if f == nil {
		return ErrNoFrame
	}
	d.frame = nil

	f.pass.End()
	cmdBuf, err := f.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	slogger().Debug("gpu: frame submitted", "draws", f.draws)
	return nil
}

// AbortFrame discards the frame being recorded.
func (d *Device) AbortFrame() {
	f := d.frame
	if f == nil {
		return
	}
	d.frame = nil
	f.pass.End()
	f.encoder.DiscardEncoding()
	slogger().Debug("gpu: frame aborted")
}

var (
	_ render.Device       = (*Device)(nil)
	_ render.FrameAborter = (*Device)(nil)
)
