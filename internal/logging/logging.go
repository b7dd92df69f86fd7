// Package logging builds the diagnostic logger shared by pkgmeta commands.
//
// Diagnostics go to stderr so they never mix with a descriptor printed on
// stdout. Without --verbose only warnings and errors are emitted.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/indaco/pkgmeta/internal/tui"
)

// Options controls the logger returned by New.
type Options struct {
	Verbose bool
	// JSON selects the JSON handler. When unset it is chosen for CI runs.
	JSON *bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger for opts.
func New(opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	useJSON := tui.IsCI()
	if opts.JSON != nil {
		useJSON = *opts.JSON
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by NewContext, or a discarding
// logger when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return Discard()
}
