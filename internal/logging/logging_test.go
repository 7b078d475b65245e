package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler_FormatsLine(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "console")

	logger.Info("assessment complete", "client", "c-1", "score", 72)

	line := buf.String()
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] INFO assessment complete`, line)
	assert.Contains(t, line, "client=c-1")
	assert.Contains(t, line, "score=72")
	assert.NotContains(t, line, "\x1b[", "buffers never get color")
}

func TestConsoleHandler_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "console")

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN shown")
}

func TestConsoleHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "console").With("component", "navigator").WithGroup("req")

	logger.Debug("page changed", "to", "results", "note", "two words")

	line := buf.String()
	assert.Contains(t, line, " component=navigator")
	assert.Contains(t, line, "req.to=results")
	assert.Contains(t, line, `req.note="two words"`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, float64(1), rec["n"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
