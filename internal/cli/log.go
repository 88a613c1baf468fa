// Package cli implements the klotskigraph command-line interface.
//
// This package provides commands for enumerating the state space of a
// sliding-block puzzle, packing the result into the compact binary format,
// and serving or archiving the artifacts. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - enumerate: Explore every reachable layout of a puzzle
//   - pack: Encode a state space and its 3D layout as a binary artifact
//   - inspect: Decode an artifact and print its header
//   - serve: Serve an artifact over HTTP
//   - publish: Archive a state space in MongoDB
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/klotskigraph/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped lines ("14:32:01.45") to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command step.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond, and any
// extra key-value pairs: "Enumerated 25955 states elapsed=1.234s".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append([]any{"elapsed", p.elapsed()}, keyvals...)...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey struct{}

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when a command runs without one (as in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
