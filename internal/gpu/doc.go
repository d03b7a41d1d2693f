// Package gpu implements the render.Device interface on the wgpu HAL.
//
// A Device draws every shape kind with one instanced pipeline. Setup
// creates the shared instance storage buffer, the camera uniform buffer
// and, per kind, a vertex buffer, a material texture and a bind group.
// Each frame then records one render pass that clears color and depth and
// issues the draws the renderer compiled.
//
// The device and queue come either from a host application through
// [NewFromProvider] or from [OpenBackend] for standalone and headless use.
package gpu
