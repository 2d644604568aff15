// Package logger provides opinionated logging capabilities for replybot.
// Every component receives a *slog.Logger; the handler behind it is chosen
// here from the configured options.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// InstanceKey is the attribute carrying the watched instance URL.
const InstanceKey = "instance"

type config struct {
	level    slog.Level
	pretty   bool
	json     bool
	writer   io.Writer
	instance string
}

// New creates a *slog.Logger. By default it writes logfmt-style text at Info
// level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	w := c.writer
	if w == nil {
		w = os.Stdout
	}

	var handler slog.Handler
	switch {
	case c.json:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.level})
	case c.pretty:
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			Prefix:          "replybot",
		})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level})
	}

	l := slog.New(handler)
	if c.instance != "" {
		l = l.With(InstanceKey, c.instance)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
