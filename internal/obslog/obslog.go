// Package obslog builds the engine's single slog.Logger the way
// cmd/purify/main.go built its logger: JSON by default, text when asked,
// level selectable by config.
package obslog

import (
	"log/slog"
	"os"
)

// Format selects the slog handler shape.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options configures New.
type Options struct {
	Format Format
	Level  slog.Level
}

// New builds a logger writing to stderr per Options.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.Format == FormatText {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}
