package fpv

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/fpv/internal/gpu"
	"github.com/gogpu/fpv/render"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for fpv and its sub-packages.
// Pass nil to restore the default silent behavior.
//
// Log levels used by fpv:
//   - [slog.LevelDebug]: per-frame diagnostics (draws, uploads, targets)
//   - [slog.LevelInfo]: lifecycle events (device opened, setup complete)
//   - [slog.LevelWarn]: non-fatal issues (resource release errors)
//
// Example:
//
//	fpv.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	render.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by fpv.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
