//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	setLogger(nil)
}

// slogger returns the logger used by the dispatcher and the backend.
func slogger() *slog.Logger { return logger.Load() }

// setLogger replaces the package logger; nil discards output. The
// backend calls it when lineart.SetLogger propagates.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}
