package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesDebugToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New("test", Options{Dir: dir, ConsoleLevel: zapcore.ErrorLevel})
	require.NoError(t, err)

	logger.Debug("planning", zap.Int("rigs", 2))
	_ = logger.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"planning"`))
	assert.True(t, strings.Contains(string(data), `"rigs":2`))
}

func TestNew_ConsoleOnly(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	logger, err := New("test", Options{JSON: true, ConsoleLevel: zapcore.ErrorLevel})
	require.NoError(t, err)
	logger.Info("hello")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNew_InvalidDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	_, err := New("test", Options{Dir: filepath.Join(file, "logs")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create logs directory")
}
