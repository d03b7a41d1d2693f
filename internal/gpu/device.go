package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fpv/render"
	"github.com/gogpu/fpv/scene"
)

var (
	// ErrNotSetUp is returned when a frame starts before Setup.
	ErrNotSetUp = errors.New("gpu: device not set up")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame
	// was not ended.
	ErrFrameInProgress = errors.New("gpu: frame already in progress")

	// ErrNoFrame is returned when a draw or EndFrame arrives outside a frame.
	ErrNoFrame = errors.New("gpu: no frame in progress")

	// ErrUnknownResource is returned for an ID this device did not create.
	ErrUnknownResource = errors.New("gpu: unknown resource id")
)

// Config configures a Device.
type Config struct {
	// Capacity is the number of instance matrices the storage buffer holds.
	Capacity int
	// Width and Height size the offscreen target when no surface is set.
	Width  uint32
	Height uint32
	// ColorFormat is the color target format.
	ColorFormat gputypes.TextureFormat
	// DepthFormat is the depth attachment format.
	DepthFormat gputypes.TextureFormat
	// ClearColor is the background.
	ClearColor gputypes.Color
	// MaxTextureSize bounds material textures; larger images are scaled.
	MaxTextureSize int
	// PrecompileShader compiles WGSL to SPIR-V with naga before handing it
	// to the backend.
	PrecompileShader bool
}

// DefaultConfig returns a 300x300 offscreen configuration with room for
// scene.DefaultCapacity instances.
func DefaultConfig() Config {
	return Config{
		Capacity:       scene.DefaultCapacity,
		Width:          300,
		Height:         300,
		ColorFormat:    gputypes.TextureFormatRGBA8Unorm,
		DepthFormat:    gputypes.TextureFormatDepth24Plus,
		ClearColor:     gputypes.Color{R: 0.11, G: 0.03, B: 0.16, A: 1},
		MaxTextureSize: DefaultMaxTextureSize,
	}
}

// Device implements render.Device on a hal.Device and hal.Queue.
//
// Device receives the GPU from its caller and never destroys it; Destroy
// only releases the objects Setup and the frame targets created.
//
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	// Shared pipeline objects.
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	pipelines registry[hal.RenderPipeline]
	buffers   registry[bufferEntry]
	bindings  registry[*material]

	// Color and depth targets, recreated on resize.
	targets targetSet

	// Surface rendering. When surfaceView is non-nil the frame renders into
	// it instead of the offscreen color texture.
	surfaceView   hal.TextureView
	surfaceWidth  uint32
	surfaceHeight uint32

	frame *frameState
	ready bool
}

type bufferEntry struct {
	buf     hal.Buffer
	size    uint64
	uniform bool
}

// material is the per-kind mesh, texture and bind group.
type material struct {
	kind        scene.Kind
	vertexBuf   hal.Buffer
	vertexCount uint32
	texture     hal.Texture
	view        hal.TextureView
	bindGroup   hal.BindGroup
}

// New wraps device and queue. Zero Config fields take DefaultConfig values.
func New(device hal.Device, queue hal.Queue, cfg Config) (*Device, error) {
	if device == nil || queue == nil {
		return nil, errors.New("gpu: nil device or queue")
	}
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.ColorFormat == gputypes.TextureFormatUndefined {
		cfg.ColorFormat = def.ColorFormat
	}
	if cfg.DepthFormat == gputypes.TextureFormatUndefined {
		cfg.DepthFormat = def.DepthFormat
	}
	if cfg.ClearColor == (gputypes.Color{}) {
		cfg.ClearColor = def.ClearColor
	}
	if cfg.MaxTextureSize <= 0 {
		cfg.MaxTextureSize = def.MaxTextureSize
	}
	return &Device{device: device, queue: queue, cfg: cfg}, nil
}

// NewFromProvider builds a Device on a host-owned GPU. The provider must
// expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. The color format follows the provider's surface format.
func NewFromProvider(provider render.DeviceHandle, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		cfg.ColorFormat = f
	}
	info := provider.AdapterInfo()
	slogger().Info("gpu: using host device", "adapter", info.Name, "type", info.Type)
	return New(device, queue, cfg)
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

// Setup creates the pipeline, the shared buffers and one mesh, texture and
// bind group per drawable kind. It must be called once before the first
// frame.
func (d *Device) Setup(materials Materials) (render.Resources, error) {
	if d.ready {
		return render.Resources{}, errors.New("gpu: Setup called twice")
	}
	res, err := d.setup(materials)
	if err != nil {
		d.Destroy()
		return render.Resources{}, err
	}
	d.ready = true
	slogger().Info("gpu: setup complete",
		"capacity", d.cfg.Capacity,
		"format", d.cfg.ColorFormat,
		"spirv", d.cfg.PrecompileShader)
	return res, nil
}

func (d *Device) setup(materials Materials) (render.Resources, error) {
	var res render.Resources
	pipeline, err := d.createPipeline()
	if err != nil {
		return res, err
	}
	res.Pipeline = render.PipelineID(d.pipelines.add(pipeline))

	instanceSize := uint64(d.cfg.Capacity) * scene.FloatsPerSlot * 4
	instanceBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "instance_transforms",
		Size:  instanceSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return res, fmt.Errorf("create instance buffer: %w", err)
	}
	res.InstanceBuffer = render.BufferID(d.buffers.add(bufferEntry{buf: instanceBuf, size: instanceSize}))
	res.Capacity = d.cfg.Capacity

	uniformBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "camera_uniform",
		Size:  render.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return res, fmt.Errorf("create uniform buffer: %w", err)
	}
	res.UniformBuffer = render.BufferID(d.buffers.add(bufferEntry{buf: uniformBuf, size: render.UniformSize, uniform: true}))

	d.sampler, err = d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "material_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return res, fmt.Errorf("create sampler: %w", err)
	}

	for _, k := range scene.DrawOrder {
		m, err := d.createMaterial(k, materials[k], instanceBuf, instanceSize, uniformBuf)
		if err != nil {
			return res, fmt.Errorf("%s material: %w", k, err)
		}
		res.Meshes[k] = render.Mesh{
			Bindings:    render.BindingSetID(d.bindings.add(m)),
			VertexCount: m.vertexCount,
		}
	}
	return res, nil
}

// createPipeline compiles the instanced shader and creates the layouts and
// the depth-tested render pipeline.
func (d *Device) createPipeline() (hal.RenderPipeline, error) {
	src, err := shaderSource(d.cfg.PrecompileShader)
	if err != nil {
		return nil, err
	}
	d.shader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "instanced_shader",
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("compile instanced shader: %w", err)
	}

	d.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "instanced_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: render.UniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler: &gputypes.SamplerBindingLayout{
					Type: gputypes.SamplerBindingTypeFiltering,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	d.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "instanced_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "instanced_pipeline",
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.shader,
			EntryPoint: "vs_main",
			Buffers:    meshVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     d.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    d.cfg.ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            d.cfg.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create instanced pipeline: %w", err)
	}
	return pipeline, nil
}

// createMaterial uploads the mesh and texture for k and builds its bind
// group over the shared buffers and sampler.
func (d *Device) createMaterial(k scene.Kind, img image.Image, instanceBuf hal.Buffer, instanceSize uint64, uniformBuf hal.Buffer) (*material, error) {
	m := &material{kind: k}
	data := meshData(k)
	if len(data) == 0 {
		return nil, fmt.Errorf("no mesh for %s", k)
	}
	vb, err := d.createAndUploadBuffer(k.String()+"_vertices", meshBytes(data), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	m.vertexBuf = vb
	m.vertexCount = vertexCount(data)

	if img == nil {
		slogger().Debug("gpu: using checkerboard material", "kind", k)
		img = defaultMaterial(k)
	}
	rgba, err := ToRGBA(img, d.cfg.MaxTextureSize)
	if err != nil {
		d.destroyMaterial(m)
		return nil, err
	}
	w, h := uint32(rgba.Rect.Dx()), uint32(rgba.Rect.Dy())

	m.texture, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         k.String() + "_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		d.destroyMaterial(m)
		return nil, fmt.Errorf("create texture: %w", err)
	}
	if err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: m.texture, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		rgba.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(rgba.Stride), RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	); err != nil {
		d.destroyMaterial(m)
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	m.view, err = d.device.CreateTextureView(m.texture, &hal.TextureViewDescriptor{
		Label:         k.String() + "_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.destroyMaterial(m)
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	m.bindGroup, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  k.String() + "_bind_group",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: render.UniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: m.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: instanceBuf.NativeHandle(), Offset: 0, Size: instanceSize}},
		},
	})
	if err != nil {
		d.destroyMaterial(m)
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	slogger().Debug("gpu: material ready", "kind", k, "width", w, "height", h, "vertices", m.vertexCount)
	return m, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// Destroy releases every object created by Setup and the frame targets,
// in reverse creation order. It is safe to call more than once.
func (d *Device) Destroy() {
	if d.frame != nil {
		d.AbortFrame()
	}
	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy", "err", err)
	}
	d.targets.destroy(d.device)

	for _, m := range d.bindings.items {
		d.destroyMaterial(m)
	}
	d.bindings.reset()
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	for _, b := range d.buffers.items {
		d.device.DestroyBuffer(b.buf)
	}
	d.buffers.reset()
	for _, p := range d.pipelines.items {
		d.device.DestroyRenderPipeline(p)
	}
	d.pipelines.reset()
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
	d.ready = false
}

func (d *Device) destroyMaterial(m *material) {
	if m.bindGroup != nil {
		d.device.DestroyBindGroup(m.bindGroup)
		m.bindGroup = nil
	}
	if m.view != nil {
		d.device.DestroyTextureView(m.view)
		m.view = nil
	}
	if m.texture != nil {
		d.device.DestroyTexture(m.texture)
		m.texture = nil
	}
	if m.vertexBuf != nil {
		d.device.DestroyBuffer(m.vertexBuf)
		m.vertexBuf = nil
	}
}

// registry hands out 1-based IDs for device objects.
type registry[T any] struct {
	items []T
}

func (r *registry[T]) add(v T) uint32 {
	r.items = append(r.items, v)
	return uint32(len(r.items))
}

func (r *registry[T]) get(id uint32) (T, bool) {
	var zero T
	if id == 0 || int(id) > len(r.items) {
		return zero, false
	}
	return r.items[id-1], true
}

func (r *registry[T]) reset() { r.items = nil }
