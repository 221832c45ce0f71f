// Package glintlog wraps log/slog the way ardnew-aenv/log wraps it: a
// Logger embeds *slog.Logger plus a mutex-guarded config struct, configured
// through functional options. A nil *Logger is silence, matching the
// evaluator's "embeddable, not chatty by default" posture — every call site
// in glint that takes a *Logger must treat nil as a no-op, never a panic.
package glintlog

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Option applies a configuration change to a config value, returning the
// updated copy.
type Option func(config) config

// apply folds a sequence of options over cfg in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return cfg
}

type config struct {
	mutex  *sync.RWMutex
	output io.Writer
	level  slog.Level
}

func makeConfig(opts ...Option) config {
	c := config{mutex: &sync.RWMutex{}, output: io.Discard, level: slog.LevelInfo}
	return apply(c, opts...)
}

// WithWriter returns an Option that sets the destination for log output.
// A nil writer is treated as io.Discard.
func WithWriter(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}
		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.output = w
		return c
	}
}

// WithLevel returns an Option that sets the minimum level logged; messages
// below it are discarded by the underlying handler.
func WithLevel(level slog.Level) Option {
	return func(c config) config {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.level = level
		return c
	}
}

// Logger is an optional diagnostic sink threaded through the evaluator and
// import resolver. The zero value is not usable; use New. A nil *Logger
// pointer is always valid and logs nothing — every method on *Logger below
// nil-checks its receiver first.
type Logger struct {
	*slog.Logger
	cfg config
}

// New returns a Logger configured by opts, defaulting to discarding all
// output at Info level.
func New(opts ...Option) *Logger {
	cfg := makeConfig(opts...)
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level})),
		cfg:    cfg,
	}
}

// Wrap returns a new Logger with opts applied on top of l's current
// configuration, without disturbing l itself — callers sharing one Logger
// across goroutines can safely derive a scoped variant.
func (l *Logger) Wrap(opts ...Option) *Logger {
	if l == nil {
		return New(opts...)
	}
	l.cfg.mutex.RLock()
	base := l.cfg
	l.cfg.mutex.RUnlock()
	base.mutex = &sync.RWMutex{}
	cfg := apply(base, opts...)
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level})),
		cfg:    cfg,
	}
}

// Debugf logs at Debug level if l is non-nil.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Debug(fmt.Sprintf(format, args...))
}

// Warnf logs at Warn level if l is non-nil.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	l.Logger.Warn(fmt.Sprintf(format, args...))
}
