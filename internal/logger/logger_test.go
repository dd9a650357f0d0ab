package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"noveltycam/internal/config"
)

func TestNewLoggerWritesLevelFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(&config.Config{LogDirectory: dir, LogFormat: "json", LogLevel: "info"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	l.Debug("hidden %d", 1)
	l.Info("frame %d processed", 7)
	l.Warning("detection slow")
	l.Error("source failed: %s", "eof")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Reading %s: %v", name, err)
		}
		return string(data)
	}

	info := read("info.log")
	if !strings.Contains(info, "frame 7 processed") {
		t.Errorf("info.log missing entry: %s", info)
	}
	if strings.Contains(info, "hidden") {
		t.Error("Debug entry should be filtered at info level")
	}
	if !strings.Contains(read("warning.log"), "detection slow") {
		t.Error("warning.log missing entry")
	}
	if !strings.Contains(read("error.log"), "source failed: eof") {
		t.Error("error.log missing entry")
	}
}

func TestCleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(&config.Config{LogDirectory: dir, LogFormat: "json", LogLevel: "info"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer l.Close()

	l.Warning("first")
	if err := l.CleanLogs("warning.log"); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty warning.log, got %q", data)
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Info("alert %s", "dog")
	l.Debug("details")

	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) || !strings.Contains(out, "alert dog") {
		t.Errorf("Unexpected output: %s", out)
	}
	if !strings.Contains(out, "details") {
		t.Error("NewWriter should keep debug entries")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"WARNING": "warn",
		"error":   "error",
		"":        "info",
		"verbose": "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
