package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frb.log")
	logger, err := New(path, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", zap.String("op", "refresh"))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"msg":"hello"`) || !strings.Contains(got, `"op":"refresh"`) {
		t.Fatalf("log missing entry: %s", got)
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("debug entry written at info level: %s", got)
	}
}

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, err := New("  ", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("discarded")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	lvl, err := parseLevel("")
	if err != nil {
		t.Fatalf("parseLevel: %v", err)
	}
	if lvl.Level() != zap.InfoLevel {
		t.Fatalf("level = %v, want info", lvl.Level())
	}
	lvl, err = parseLevel("WARN")
	if err != nil {
		t.Fatalf("parseLevel: %v", err)
	}
	if lvl.Level() != zap.WarnLevel {
		t.Fatalf("level = %v, want warn", lvl.Level())
	}
}
