package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "id=7")
	assert.Contains(t, out, prefix)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chime.log")

	logger, closer, err := OpenFile(path, "")
	require.NoError(t, err)
	logger.Info("first")
	require.NoError(t, closer.Close())

	logger, closer, err = OpenFile(path, "info")
	require.NoError(t, err)
	logger.Info("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestOpenFileEmptyPath(t *testing.T) {
	_, _, err := OpenFile("", "info")
	assert.Error(t, err)
}

func TestDiscardDropsEverything(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	logger.Error("dropped", "id", 1)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}
