package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("tint"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("whatever"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nope"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Resolve(true, ""))
	assert.Equal(t, slog.LevelInfo, Resolve(false, ""))
	assert.Equal(t, slog.LevelError, Resolve(true, "error"))
}

func TestNewAutoFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatAuto, slog.LevelInfo)
	log.Info("hello", "k", "v")
	log.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	long := strings.Repeat("é", 130)
	p := Preview(long)
	assert.True(t, strings.HasSuffix(p, "…"))
	assert.Equal(t, 121, len([]rune(p)))
}
