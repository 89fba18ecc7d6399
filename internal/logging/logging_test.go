package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogConfig{Level: "info", Format: "json", Output: &buf})
	logger.Info("scanned", "path", "world.sav.gz")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\nraw: %s", err, buf.String())
	}
	if msg, _ := entry["msg"].(string); msg != "scanned" {
		t.Errorf("msg = %q, want %q", msg, "scanned")
	}
	if v, _ := entry["path"].(string); v != "world.sav.gz" {
		t.Errorf("path = %q", v)
	}
}

func TestTextIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogConfig{Level: "debug", Output: &buf})
	logger.Debug("hello text")
	if !strings.Contains(buf.String(), "msg=\"hello text\"") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogConfig{Output: &buf})
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at the default level, got %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("warn should pass, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
