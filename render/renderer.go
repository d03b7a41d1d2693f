// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/fpv/scene"
)

// ErrNilDevice is returned by NewRenderer when no device is given.
var ErrNilDevice = errors.New("render: nil device")

// Option configures a Renderer.
type Option func(*options)

type options struct {
	projection Projection
}

// WithProjection overrides DefaultProjection.
func WithProjection(p Projection) Option {
	return func(o *options) {
		o.projection = p
	}
}

// Stats describes the last rendered frame.
type Stats struct {
	Frames        uint64
	Draws         int
	Instances     int
	UploadedBytes int
	Target        Target
}

// Renderer uploads a scene snapshot and issues its instanced draws.
//
// Example:
//
//	r, err := render.NewRenderer(dev, res)
//	...
//	s.Update()
//	if err := r.Render(s.RenderData()); err != nil {
//	    return err
//	}
type Renderer struct {
	dev        Device
	res        Resources
	projection Projection

	// reused across frames
	staging []byte
	uniform [UniformSize]byte
	cmds    []DrawCommand

	stats Stats
}

// NewRenderer returns a renderer that draws with res on dev.
func NewRenderer(dev Device, res Resources, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := options{projection: DefaultProjection()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		dev:        dev,
		res:        res,
		projection: o.projection,
	}
	if res.Capacity > 0 {
		r.staging = make([]byte, 0, res.Capacity*scene.FloatsPerSlot*4)
	}
	return r, nil
}

// Projection returns the projection used for every frame.
func (r *Renderer) Projection() Projection { return r.projection }

// SetProjection replaces the projection from the next frame on.
func (r *Renderer) SetProjection(p Projection) { r.projection = p }

// Stats returns statistics for the last successful frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Render draws one frame. Any error abandons the frame; the caller should
// treat it as fatal.
func (r *Renderer) Render(rd scene.RenderData) error {
	if rd.Instances() != rd.Counts.Total() || len(rd.Transforms)%scene.FloatsPerSlot != 0 {
		return fmt.Errorf("%w: %d floats for %s", ErrCountMismatch, len(rd.Transforms), rd.Counts)
	}
	cmds, err := AppendCommands(r.cmds[:0], rd.Counts, r.res)
	if err != nil {
		return err
	}
	r.cmds = cmds

	target, err := r.dev.BeginFrame()
	if err != nil {
		return fmt.Errorf("render: begin frame: %w", err)
	}
	if err := r.encode(rd, target); err != nil {
		if a, ok := r.dev.(FrameAborter); ok {
			a.AbortFrame()
		}
		return err
	}
	if err := r.dev.EndFrame(); err != nil {
		return fmt.Errorf("render: end frame: %w", err)
	}

	r.stats.Frames++
	r.stats.Draws = len(cmds)
	r.stats.Instances = rd.Instances()
	r.stats.UploadedBytes = len(r.staging) + UniformSize
	r.stats.Target = target
	slogger().Debug("render: frame",
		"frame", r.stats.Frames,
		"draws", r.stats.Draws,
		"instances", r.stats.Instances,
		"bytes", r.stats.UploadedBytes)
	return nil
}

func (r *Renderer) encode(rd scene.RenderData, target Target) error {
	proj := r.projection.Matrix(target.Width, target.Height)

	r.staging = appendFloats(r.staging[:0], rd.Transforms)
	if len(r.staging) > 0 {
		if err := r.dev.UploadBuffer(r.res.InstanceBuffer, 0, r.staging); err != nil {
			return fmt.Errorf("render: upload instances: %w", err)
		}
	}

	EncodeUniform(r.uniform[:], rd.View, proj)
	if err := r.dev.UploadUniform(r.res.UniformBuffer, 0, r.uniform[:]); err != nil {
		return fmt.Errorf("render: upload uniform: %w", err)
	}

	for _, c := range r.cmds {
		if err := r.dev.SubmitDraw(c); err != nil {
			return fmt.Errorf("render: draw %s: %w", c.Kind, err)
		}
	}
	return nil
}
