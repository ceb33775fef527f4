package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":     FormatAuto,
		"auto": FormatAuto,
		"TEXT": FormatText,
		"json": FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestAutoIsJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Level: slog.LevelInfo}).Info("copied", "path", "/etc/hostname")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "copied", rec["msg"])
	assert.Equal(t, "/etc/hostname", rec["path"])
}

func TestTextWithGroup(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: FormatText, Group: "cruxcp"}).Info("copied", "path", "/a")

	assert.Contains(t, buf.String(), "msg=copied")
	assert.Contains(t, buf.String(), "cruxcp.path=/a")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Format: FormatText, Level: Level(true, false)})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Level(false, false))
	assert.Equal(t, slog.LevelWarn, Level(true, false))
	assert.Equal(t, slog.LevelDebug, Level(false, true))
	assert.Equal(t, slog.LevelDebug, Level(true, true))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
