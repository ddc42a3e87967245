package sparsela

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosityLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, VerbosityLevel(1))
	assert.Equal(t, slog.LevelWarn, VerbosityLevel(2))
	assert.Equal(t, slog.LevelInfo, VerbosityLevel(3))
	assert.Equal(t, LevelLowPriority, VerbosityLevel(4))
	assert.Equal(t, slog.LevelDebug, VerbosityLevel(5))
	assert.Equal(t, slog.LevelDebug, VerbosityLevel(0))
	assert.Equal(t, slog.LevelDebug, VerbosityLevel(42))
}

func TestLoggerSeverityGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, 2)

	l.Info("hidden")
	l.LowPriority("hidden too")
	l.Warn("shown")
	l.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
}

func TestLoggerLowPriorityName(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, 4)
	require.True(t, l.LowPriorityEnabled())

	l.LogIteration(3, 0.5, 0.25)
	assert.Contains(t, buf.String(), "level=LOWPRIORITY")
	assert.Contains(t, buf.String(), "iteration=3")
}

func TestSetVerbosityFirstCallWins(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, 1)
	derived := l.WithMethod(MethodCG)

	assert.True(t, derived.SetVerbosity(5))
	assert.False(t, l.SetVerbosity(1))
	assert.False(t, derived.SetVerbosity(2))

	l.Debug("debug visible")
	assert.Contains(t, buf.String(), "debug visible")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.LowPriorityEnabled())
	assert.False(t, l.SetVerbosity(5))
	assert.NoError(t, l.Close())
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solve.log")
	l, err := NewFileLogger(path, 3)
	require.NoError(t, err)

	l.WithShape(2, 3).Info("loaded")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded")
	assert.Contains(t, string(data), "rows=2")
}
