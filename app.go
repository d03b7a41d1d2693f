package fpv

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/fpv/input"
	"github.com/gogpu/fpv/render"
	"github.com/gogpu/fpv/scene"
)

// ErrInvalidDelta is returned by Frame for a negative or non-finite dt.
var ErrInvalidDelta = errors.New("fpv: invalid frame delta")

// App drives one scene through one renderer. The host owns the loop and
// calls Frame once per frame.
//
// Every tick applies the input command in a fixed order: spin, move,
// update, render. The rendered view therefore always reflects the input
// of the same tick.
//
// App is not safe for concurrent use.
type App struct {
	scene    *scene.Scene
	renderer *render.Renderer
	log      *slog.Logger
	hook     func(FrameInfo)

	frames  uint64
	elapsed float64
}

// NewApp creates an App. s and r must not be nil.
func NewApp(s *scene.Scene, r *render.Renderer, opts ...Option) *App {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.projection != nil {
		r.SetProjection(*o.projection)
	}
	return &App{
		scene:    s,
		renderer: r,
		log:      o.logger,
		hook:     o.hook,
	}
}

func (a *App) logger() *slog.Logger {
	if a.log != nil {
		return a.log
	}
	return Logger()
}

// Scene returns the driven scene.
func (a *App) Scene() *scene.Scene { return a.scene }

// Renderer returns the renderer.
func (a *App) Renderer() *render.Renderer { return a.renderer }

// Frames returns the number of completed frames.
func (a *App) Frames() uint64 { return a.frames }

// Elapsed returns the sum of dt passed to Tick.
func (a *App) Elapsed() float64 { return a.elapsed }

// Tick applies cmd and recomputes every transform, returning the snapshot
// to render. Motion is per tick: dt only advances Elapsed. A negative or
// non-finite dt still ticks but leaves Elapsed unchanged; Frame rejects it
// with ErrInvalidDelta.
func (a *App) Tick(dt float64, cmd input.Command) scene.RenderData {
	if validDelta(dt) {
		a.elapsed += dt
	}
	if cmd.SpinX != 0 || cmd.SpinY != 0 {
		a.scene.Spin(cmd.SpinX, cmd.SpinY)
	}
	a.scene.MoveCamera(cmd.Velocity)
	a.scene.Update()
	return a.scene.RenderData()
}

// Frame runs one tick and renders it. A render error is returned as is;
// the frame is not counted.
func (a *App) Frame(dt float64, cmd input.Command) error {
	if !validDelta(dt) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	rd := a.Tick(dt, cmd)
	if err := a.renderer.Render(rd); err != nil {
		a.logger().Error("fpv: frame failed", "frame", a.frames+1, "err", err)
		return fmt.Errorf("fpv: frame %d: %w", a.frames+1, err)
	}
	a.frames++
	if a.hook != nil {
		a.hook(FrameInfo{
			Frame:   a.frames,
			Elapsed: a.elapsed,
			Counts:  rd.Counts,
			Stats:   a.renderer.Stats(),
		})
	}
	return nil
}

func validDelta(dt float64) bool {
	return dt >= 0 && !math.IsInf(dt, 0)
}
