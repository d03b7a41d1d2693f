// Package fpv renders a first-person 3-D scene of instanced shapes.
//
// # Overview
//
// A scene holds many independently transformed objects of a few shape
// kinds (triangles and quads) and one camera. Every frame the model
// matrices are recomputed into one packed buffer, grouped by kind in a
// fixed order, uploaded once, and drawn with one instanced draw per kind
// that shares a single pipeline and camera uniform.
//
// # Quick Start
//
//	cfg := fpv.DefaultConfig()
//	s, err := cfg.BuildScene()
//	...
//	r, err := render.NewRenderer(dev, res, render.WithProjection(cfg.RenderProjection()))
//	...
//	app := fpv.NewApp(s, r)
//	for running {
//	    if err := app.Frame(dt, ctrl.Command()); err != nil {
//	        return err
//	    }
//	}
//
// # Architecture
//
// The module is organized into:
//   - scene: entities, camera, the packed transform arena and draw order
//   - render: draw compilation, projection and the Device interface
//   - input: keyboard and pointer to camera commands
//   - internal/gpu: the wgpu HAL implementation of render.Device
//
// The host owns the frame loop and calls [App.Frame] once per frame.
//
// # Logging
//
// fpv produces no log output by default. Call [SetLogger] to enable it.
package fpv
