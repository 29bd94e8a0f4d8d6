package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerTrimsSourceToBaseName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Warn("something happened")

	out := buf.String()
	if !strings.Contains(out, "something happened") {
		t.Fatalf("log output missing message: %q", out)
	}
	if strings.Contains(out, "/logutil/logutil_test.go") {
		t.Fatalf("expected source file trimmed to base name, got %q", out)
	}
	if !strings.Contains(out, "logutil_test.go") {
		t.Fatalf("expected source base name present, got %q", out)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected info log to be filtered at warn level, got %q", buf.String())
	}
}
