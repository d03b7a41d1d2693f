// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns a scene snapshot into GPU work.
//
// The package does not own a GPU. It drives a [Device] supplied by the host
// (see internal/gpu for the wgpu implementation, or [Recorder] for an
// in-memory one) through a fixed per-frame sequence:
//
//	BeginFrame -> UploadBuffer(instances) -> UploadUniform(view, projection)
//	           -> SubmitDraw per shape kind -> EndFrame
//
// # Draw batching
//
// [Compile] walks scene.DrawOrder, the same table the scene packer uses,
// and emits one instanced draw per shape kind with a non-zero count. Each
// draw's BaseInstance is the running sum of the counts before it, so the
// draw ranges partition the packed instance buffer exactly:
//
//	counts  triangle=2 quad=3
//	slots   [T0 T1 Q0 Q1 Q2]
//	draws   {triangle base=0 n=2} {quad base=2 n=3}
//
// All draws share one pipeline and one uniform buffer. Only the per-kind
// binding set (texture and sampler) and mesh change between draws.
//
// # Thread Safety
//
// A Renderer is NOT safe for concurrent use. Render must not overlap a
// scene Update for the same frame.
package render
