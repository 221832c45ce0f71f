package glintlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNilLoggerMethodsAreNoOps(t *testing.T) {
	var l *Logger
	l.Debugf("should not panic: %d", 1)
	l.Warnf("should not panic: %d", 2)
}

func TestNewDefaultsDiscardOutput(t *testing.T) {
	l := New()
	l.Warnf("hello")
	if l.Logger == nil {
		t.Fatal("expected a non-nil embedded *slog.Logger")
	}
}

func TestWithWriterCapturesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithLevel(slog.LevelDebug))
	l.Debugf("count=%d", 3)
	if !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("got %q, want it to contain \"count=3\"", buf.String())
	}
}

func TestWithLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithLevel(slog.LevelWarn))
	l.Debugf("debug message")
	if strings.Contains(buf.String(), "debug message") {
		t.Fatal("expected a debug message to be filtered out at Warn level")
	}
	l.Warnf("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Fatal("expected a warn message to pass the Warn threshold")
	}
}

func TestWithWriterNilTreatedAsDiscard(t *testing.T) {
	l := New(WithWriter(nil))
	l.Warnf("should not panic")
}

func TestWrapDerivesIndependentLogger(t *testing.T) {
	var baseBuf, scopedBuf bytes.Buffer
	base := New(WithWriter(&baseBuf), WithLevel(slog.LevelDebug))
	scoped := base.Wrap(WithWriter(&scopedBuf))

	scoped.Debugf("scoped message")
	if strings.Contains(baseBuf.String(), "scoped message") {
		t.Fatal("expected the scoped logger's output not to leak into the base logger's writer")
	}
	if !strings.Contains(scopedBuf.String(), "scoped message") {
		t.Fatal("expected the scoped logger to write to its own writer")
	}
}

func TestWrapOnNilLoggerBehavesLikeNew(t *testing.T) {
	var l *Logger
	scoped := l.Wrap()
	if scoped == nil {
		t.Fatal("expected Wrap on a nil *Logger to return a usable Logger")
	}
	scoped.Warnf("should not panic")
}
