package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesLevelFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	l.Info("frame %d done", 7)
	l.Warning("cache %s ignored", "tracks.db")
	l.Error("boom")

	info, err := os.ReadFile(filepath.Join(dir, InfoFile))
	require.NoError(t, err)
	assert.Contains(t, string(info), "frame 7 done")

	warning, err := os.ReadFile(filepath.Join(dir, WarningFile))
	require.NoError(t, err)
	assert.Contains(t, string(warning), "cache tracks.db ignored")

	errs, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "boom")
	assert.NotContains(t, string(errs), "frame 7 done")
}

func TestLogger_CleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	l.Warning("to be removed")
	require.NoError(t, l.CleanLogs(WarningFile))

	data, err := os.ReadFile(filepath.Join(dir, WarningFile))
	require.NoError(t, err)
	assert.Empty(t, data)

	assert.Error(t, l.CleanLogs("other.log"))
}

func TestLogger_CleanLogsThenWrite(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	l.Info("first run finished with a fairly long line to move the offset")
	require.NoError(t, l.CleanLogs(InfoFile))
	l.Info("second run")

	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x00")
	assert.NotContains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	l := Discard()
	l.Info("x")
	l.Warning("y")
	l.Error("z")
	assert.NoError(t, l.Close())
}
