package lineart

import (
	"log/slog"
	"sync/atomic"
)

// silent is the logger in effect until SetLogger installs another one.
var silent = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(silent)
}

// SetLogger routes extraction diagnostics to l and hands l to the
// registered compute backend. A nil logger silences output again, which
// is also the initial state. Safe to call while frames are running.
//
// Messages are prefixed "lineart:" and use three levels:
//   - [slog.LevelDebug]: per-stage counts of every frame, adjacency cache hits
//   - [slog.LevelInfo]: extractor setup, backend registration
//   - [slog.LevelWarn]: non-manifold meshes, dropped strokes, GPU frames
//     redone on the CPU
//
// Example:
//
//	lineart.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
	if b := Backend(); b != nil {
		shareLogger(b, l)
	}
}

// Logger returns the logger set with SetLogger. The gpu package logs
// through it as well.
func Logger() *slog.Logger {
	return logger.Load()
}

// shareLogger passes l on to backends that keep a logger of their own.
func shareLogger(b ComputeBackend, l *slog.Logger) {
	if ls, ok := b.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}
