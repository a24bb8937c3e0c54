package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("debug"))
	assert.True(t, ValidLevel("Warn"))
	assert.False(t, ValidLevel("verbose"))
	assert.False(t, ValidLevel(""))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})

	l.Debug("debug message")
	l.Info("info message")
	assert.Empty(t, buf.String())

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")

	l.SetLevel(slog.LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_WithComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf})

	l.WithComponent("history").WithField("depth", 2).Info("group opened", "group", "Move junction")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "group opened", rec["msg"])
	assert.Equal(t, "history", rec["component"])
	assert.EqualValues(t, 2, rec["depth"])
	assert.Equal(t, "Move junction", rec["group"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})

	l.WithFields(map[string]any{"a": 1}).Info("hello")
	assert.Contains(t, buf.String(), "a=1")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.False(t, l.Enabled(slog.LevelError))
	l.Error("dropped")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netedit.log")

	l, closer, err := OpenFile(path, Config{Level: slog.LevelInfo})
	require.NoError(t, err)
	l.Info("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(New(Config{Level: slog.LevelInfo, Output: &buf}))
	Default().Info("via default")
	assert.Contains(t, buf.String(), "via default")
}
