package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqstack/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// debugf adapts a logger to the printf-style callbacks used by the library
// packages.
func debugf(l *log.Logger) func(string, ...any) {
	return func(format string, args ...any) { l.Debugf(format, args...) }
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Resolved 6 groups (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks forwards group events to the logger at debug level. File and
// include events are already logged through the library Logger callbacks.
type logHooks struct {
	observability.NoopResolveHooks
	logger *log.Logger
}

func (h *logHooks) OnGroupStart(_ context.Context, group, path string) {
	h.logger.Debug("resolving group", "group", group, "file", path)
}

func (h *logHooks) OnGroupComplete(_ context.Context, group string, entries int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("group failed", "group", group, "err", err)
		return
	}
	h.logger.Debug("group resolved", "group", group, "entries", entries, "elapsed", d.Round(time.Microsecond))
}
