package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/tempalloc/internal/logger"
)

func TestConfigCommand(t *testing.T) {
	resetFlags(t)

	path := filepath.Join(t.TempDir(), "tempalloc.yaml")
	if err := os.WriteFile(path, []byte("heap: pool\nmaxKeys: 4096\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Setenv("TEMPALLOC_BENCH_DEPTH", "8")

	output, err := captureOutput(t, runConfig)
	if err != nil {
		t.Fatalf("runConfig() error = %v", err)
	}
	assertContains(t, output, []string{"heap: pool", "maxKeys: 4096", "depth: 8"})
}

func TestConfigCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, runConfig)
	if err != nil {
		t.Fatalf("runConfig() error = %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"heap": "go"`, `"initialCapacity": 128`})
}

func TestConfigCommand_Invalid(t *testing.T) {
	resetFlags(t)
	t.Setenv("TEMPALLOC_HEAP", "arena")

	if _, err := captureOutput(t, runConfig); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestRootSetup_LogDir(t *testing.T) {
	resetFlags(t)
	logDir = t.TempDir()

	if err := setup(rootCmd, nil); err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	t.Cleanup(func() {
		_ = closeLog()
		_, _ = logger.Init(logger.Options{})
	})

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one log file, got %d", len(entries))
	}
}
