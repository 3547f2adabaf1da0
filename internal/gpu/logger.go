// Package gpu drives the progressive path tracer's compute pipeline on a
// gogpu/wgpu HAL device: device bring-up, asynchronous pipeline compilation,
// double-buffered accumulation images, per-frame resource bindings, and the
// tick scheduler that sequences it all.
package gpu

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/pathtrace"
)

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(pathtrace.Logger())
}

// slogger returns the current package logger.
// All logging in internal/gpu goes through this function.
func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger updates the package-level logger. NewRenderer calls this with
// the root package's logger so both packages share one configuration.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = pathtrace.Logger()
	}
	loggerPtr.Store(l)
}
