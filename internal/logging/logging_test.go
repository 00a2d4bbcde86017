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
	logger := New(&buf, log.WarnLevel)

	logger.Info("hidden")
	logger.Warn("engine stalled", "player", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "engine stalled")
	assert.Contains(t, out, "player=2")
	assert.Contains(t, out, prefix)
}

func TestNewFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.log")

	for _, msg := range []string{"first", "second"} {
		logger, f, err := NewFile(path, log.InfoLevel)
		require.NoError(t, err)
		logger.Info(msg)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestNewFileBadPath(t *testing.T) {
	_, _, err := NewFile(filepath.Join(t.TempDir(), "missing", "race.log"), log.InfoLevel)
	assert.Error(t, err)
}
