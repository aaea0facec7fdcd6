package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "JSON", slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "text", slog.LevelInfo)
	slog.Info("hello", slog.Int("n", 1))
	assert.Contains(t, buf.String(), "msg=hello n=1")
}
