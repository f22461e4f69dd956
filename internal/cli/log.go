// Package cli implements the bento command-line interface.
//
// Commands open a grid through the configured store, apply one intent
// through the grid controller and save the result. The interactive editor
// (tui) and the HTTP server (serve) keep one controller alive for the whole
// session instead.
//
// # Commands
//
//   - add, resize, link, image, rm, mv: edit tiles
//   - ls, show, render: inspect the packed grid
//   - export, import, watch: exchange grid documents
//   - tui, serve: long-running editors
//   - store: inspect and clear the backing store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so request handlers can add fields.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation and logs it when done.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time as a field, rounded to
// the millisecond:
//
//	14:32:01.45 INFO Rendered 12 tile(s) elapsed=4ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. The root command does this for every
// command, and the HTTP server does it per request with a request id field.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
