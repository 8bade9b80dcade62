package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))
	logger = NewComponentLogger(logger, "resolver")

	logger.Info("resolved title", String(FieldTitle, "Bleach"), Float64("confidence", 0.93))

	line := buf.String()
	if !strings.Contains(line, "INFO resolver: resolved title") {
		t.Errorf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "title=Bleach") || !strings.Contains(line, "confidence=0.93") {
		t.Errorf("missing attrs in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("lookup failed", String(FieldTitle, "Spy x Family"), Error(errors.New("timeout waiting")))

	line := buf.String()
	if !strings.Contains(line, `title="Spy x Family"`) {
		t.Errorf("expected quoted title, got %q", line)
	}
	if !strings.Contains(line, `error="timeout waiting"`) {
		t.Errorf("expected quoted error, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestNoopHandler(t *testing.T) {
	logger := NewNop()
	// Must not panic and must not emit.
	logger.Error("ignored", Error(errors.New("boom")))
}
