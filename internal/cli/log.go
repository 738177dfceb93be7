// Package cli implements the collagefm command-line interface.
//
// Commands build on the pipeline package: they fetch a Last.fm chart,
// plan it onto a collage template and render the result. Intermediate
// artifacts (item lists and plans) are plain JSON so each step can also
// run on its own.
//
// # Commands
//
//   - generate: fetch, arrange, plan and render in one go
//   - fetch: write a user's chart as an item list
//   - plan: preview a placement offline from an item list
//   - render: paint a saved plan
//   - layouts: list the collage templates
//   - serve: run the HTTP API
//   - schedule: run the cron jobs from the config file
//   - cache: manage the HTTP and image cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes pipeline, cache and HTTP hooks into the log. Loggers are passed
// through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond and any
// extra key/value pairs, e.g. "Rendered collage tiles=11 duration=1.234s".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "duration", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
