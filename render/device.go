// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fpv/scene"
)

// DeviceHandle provides GPU device access from the host application.
// The host owns the device; internal/gpu builds a [Device] on top of it.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with no GPU behind it.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}

// BufferID names a GPU buffer owned by a Device.
type BufferID uint32

// PipelineID names a render pipeline owned by a Device.
type PipelineID uint32

// BindingSetID names a bind group (texture, sampler and shared buffers)
// owned by a Device.
type BindingSetID uint32

// Target describes the surface a frame renders into.
type Target struct {
	Width  int
	Height int
}

// Aspect returns Width/Height, or 1 for a degenerate target.
func (t Target) Aspect() float32 {
	if t.Width <= 0 || t.Height <= 0 {
		return 1
	}
	return float32(t.Width) / float32(t.Height)
}

// DrawCommand is one instanced draw.
type DrawCommand struct {
	Kind          scene.Kind
	Pipeline      PipelineID
	Bindings      BindingSetID
	VertexCount   uint32
	InstanceCount uint32
	BaseInstance  uint32
}

// Device is the command surface the renderer drives each frame. The
// renderer never creates or configures device objects; it only refers to
// them by the IDs in [Resources].
type Device interface {
	// UploadBuffer writes data into buf at offset.
	UploadBuffer(buf BufferID, offset uint64, data []byte) error

	// UploadUniform writes data into the uniform buffer buf at offset.
	UploadUniform(buf BufferID, offset uint64, data []byte) error

	// SubmitDraw records one instanced draw into the current frame.
	SubmitDraw(cmd DrawCommand) error

	// BeginFrame starts a frame and returns its target.
	BeginFrame() (Target, error)

	// EndFrame finishes and presents the frame.
	EndFrame() error
}

// FrameAborter is implemented by devices that must release per-frame state
// when a frame fails after BeginFrame.
type FrameAborter interface {
	AbortFrame()
}

// Mesh is the per-kind geometry and binding set.
type Mesh struct {
	Bindings    BindingSetID
	VertexCount uint32
}

// Resources are the device objects a Renderer draws with, created once
// during setup.
type Resources struct {
	Pipeline       PipelineID
	InstanceBuffer BufferID
	UniformBuffer  BufferID
	// Capacity is the number of matrices InstanceBuffer holds.
	// Zero disables the capacity check.
	Capacity int
	Meshes   [scene.NumShapes]Mesh
}
