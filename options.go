package fpv

import (
	"log/slog"

	"github.com/gogpu/fpv/render"
	"github.com/gogpu/fpv/scene"
)

// Option configures an App during creation.
//
// Example:
//
//	app := fpv.NewApp(s, r,
//	    fpv.WithProjection(cfg.RenderProjection()),
//	    fpv.WithFrameHook(func(f fpv.FrameInfo) { ... }),
//	)
type Option func(*appOptions)

// FrameInfo is passed to a frame hook after each completed frame.
type FrameInfo struct {
	// Frame is the 1-based number of the completed frame.
	Frame uint64
	// Elapsed is the sum of dt over all ticks.
	Elapsed float64
	// Counts are the drawn instances per kind.
	Counts scene.Counts
	// Stats are the renderer statistics of the frame.
	Stats render.Stats
}

type appOptions struct {
	logger     *slog.Logger
	projection *render.Projection
	hook       func(FrameInfo)
}

// WithLogger sets the logger of this App. Without it the App logs through
// the package logger set by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithProjection replaces the renderer's projection.
func WithProjection(p render.Projection) Option {
	return func(o *appOptions) {
		o.projection = &p
	}
}

// WithFrameHook registers fn to run after every completed frame.
func WithFrameHook(fn func(FrameInfo)) Option {
	return func(o *appOptions) {
		o.hook = fn
	}
}
