// Package log builds the slog.Logger used by the keyscan commands.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, stderr receives everything at the configured level
// and the file receives a copy.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below Debug and enables the per-tick trace lines.
const LevelTrace slog.Level = -8

// Config is embedded into the CLI with the "log." prefix.
type Config struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"KEYSCAN_LOG_LEVEL"`
	Format  string `help:"Log output format" enum:"text,json" default:"text" env:"KEYSCAN_LOG_FORMAT"`
	File    string `help:"Also write logs to this file" env:"KEYSCAN_LOG_FILE"`
	RawFile string `help:"Write per-tick trace lines to this file" env:"KEYSCAN_LOG_RAW_FILE"`
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans records out to several handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r.Clone())
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only the levels accepted by pass to h.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}
			return a
		},
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// NewLogger builds a logger writing to the given stdout and stderr writers.
// It is split from SetupLogger so tests can capture output.
func NewLogger(cfg Config, stdout, stderr io.Writer, file io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Level)
	var handlers []slog.Handler

	if file == nil {
		handlers = append(handlers,
			LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: newHandler(cfg.Format, stdout, level)},
			LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: newHandler(cfg.Format, stderr, slog.LevelError)},
		)
	} else {
		handlers = append(handlers,
			newHandler(cfg.Format, stderr, level),
			newHandler(cfg.Format, file, level),
		)
	}
	return slog.New(MultiHandler{hs: handlers})
}

// SetupLogger opens the optional log file and returns the logger together
// with the files the caller must close.
func SetupLogger(cfg Config) (*slog.Logger, []io.Closer, error) {
	var closeFiles []io.Closer
	var file io.Writer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closeFiles = append(closeFiles, f)
		file = f
	}
	return NewLogger(cfg, os.Stdout, os.Stderr, file), closeFiles, nil
}
