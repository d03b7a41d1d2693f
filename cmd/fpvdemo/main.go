// Command fpvdemo runs the instanced first-person scene headlessly for a
// fixed number of frames with a scripted walk.
//
// Usage:
//
//	fpvdemo -config fpv.toml -frames 240 -backend noop -v
//
// The record backend draws into an in-memory recorder, noop uses the wgpu
// no-op HAL and vulkan renders offscreen on the first suitable GPU.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fpv"
	"github.com/gogpu/fpv/input"
	"github.com/gogpu/fpv/internal/gpu"
	"github.com/gogpu/fpv/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file (default: built-in demo scene)")
		frames     = flag.Int("frames", 240, "number of frames to run")
		backend    = flag.String("backend", "record", "device backend: record, noop or vulkan")
		width      = flag.Int("width", 300, "target width")
		height     = flag.Int("height", 300, "target height")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if err := checkFlags(*frames, *width, *height); err != nil {
		log.Fatalf("fpvdemo: %v", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	fpv.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := fpv.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = fpv.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	if err := run(cfg, *backend, *frames, *width, *height); err != nil {
		log.Fatalf("fpvdemo: %v", err)
	}
}

// checkFlags rejects sizes that would not fit a render target.
func checkFlags(frames, width, height int) error {
	if frames < 0 {
		return fmt.Errorf("-frames must not be negative, got %d", frames)
	}
	if width <= 0 || height <= 0 || width > math.MaxUint32 || height > math.MaxUint32 {
		return fmt.Errorf("-width and -height must be positive, got %dx%d", width, height)
	}
	return nil
}

func run(cfg fpv.Config, backend string, frames, width, height int) error {
	if err := checkFlags(frames, width, height); err != nil {
		return err
	}
	s, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	dev, res, cleanup, err := openDevice(cfg, backend, width, height)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := render.NewRenderer(dev, res, render.WithProjection(cfg.RenderProjection()))
	if err != nil {
		return err
	}
	app := fpv.NewApp(s, r, fpv.WithFrameHook(func(fi fpv.FrameInfo) {
		if fi.Frame%60 == 0 {
			fpv.Logger().Info("frame",
				"n", fi.Frame,
				"elapsed", fmt.Sprintf("%.2fs", fi.Elapsed),
				"counts", fi.Counts.String(),
				"draws", fi.Stats.Draws)
		}
	}))

	ctrl := cfg.Controller()
	const dt = 1.0 / 60
	for i := 0; i < frames; i++ {
		script(ctrl, i)
		if err := app.Frame(dt, ctrl.Command()); err != nil {
			return err
		}
	}

	cam := s.Camera()
	fpv.Logger().Info("done",
		"frames", app.Frames(),
		"position", cam.Position,
		"yaw", cam.Yaw,
		"pitch", cam.Pitch)
	return nil
}

// script walks forward, looks around, then strafes.
func script(c *input.Controller, frame int) {
	switch {
	case frame == 0:
		c.KeyDown(gpucontext.KeyW)
	case frame == 60:
		c.KeyUp(gpucontext.KeyW)
	case frame > 60 && frame <= 120:
		c.PointerMoved(4, -1)
	case frame == 121:
		c.KeyDown(gpucontext.KeyD)
	case frame == 180:
		c.KeyUp(gpucontext.KeyD)
		c.KeyDown(gpucontext.KeyS)
	case frame == 200:
		c.KeyUp(gpucontext.KeyS)
	}
}

func openDevice(cfg fpv.Config, backend string, width, height int) (render.Device, render.Resources, func(), error) {
	if backend == "record" {
		rec := render.NewRecorder(width, height)
		rec.Keep = 1
		return rec, rec.Resources(cfg.Scene.Capacity), func() {}, nil
	}

	materials, err := cfg.LoadMaterials()
	if err != nil {
		return nil, render.Resources{}, nil, err
	}
	sa, err := gpu.OpenBackend(backend)
	if err != nil {
		return nil, render.Resources{}, nil, err
	}
	d, err := gpu.New(sa.Device, sa.Queue, gpu.Config{
		Capacity: cfg.Scene.Capacity,
		Width:    uint32(width),
		Height:   uint32(height),
	})
	if err != nil {
		sa.Close()
		return nil, render.Resources{}, nil, err
	}
	res, err := d.Setup(materials)
	if err != nil {
		sa.Close()
		return nil, render.Resources{}, nil, err
	}
	return d, res, func() {
		d.Destroy()
		sa.Close()
	}, nil
}
