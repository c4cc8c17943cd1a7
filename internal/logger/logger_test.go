package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	closeFn, err := Init(Options{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInit_Writer(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelWarn})
	require.NoError(t, err)
	defer closeFn()

	Info("hidden")
	Warn("shown", "key", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=7")
}

func TestInit_LogDir(t *testing.T) {
	dir := t.TempDir()
	closeFn, err := Init(Options{Enabled: true, LogDir: dir, Level: slog.LevelDebug})
	require.NoError(t, err)

	Debug("to file", "n", 1)
	require.NoError(t, closeFn())

	name := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)

	_, _ = Init(Options{})
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	old := logPrefix + "2024-01-01" + logSuffix
	recent := logPrefix + "2024-02-28" + logSuffix
	other := "unrelated.log"
	for _, n := range []string{old, recent, other} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, filepath.Join(dir, old))
	assert.FileExists(t, filepath.Join(dir, recent))
	assert.FileExists(t, filepath.Join(dir, other))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}
