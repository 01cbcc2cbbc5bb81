package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/groundsched/config"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "search", zerolog.InfoLevel)
	l.Debugf("hidden")
	l.With(map[string]any{"search_id": "abc"}).Infof("found %s", "R1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "search", entry["component"])
	assert.Equal(t, "abc", entry["search_id"])
	assert.Equal(t, "found R1", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewFromConfigWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gs.log")
	l, closer, err := NewFromConfig(config.LoggingConfig{Level: "debug", File: path, MaxSizeMB: 1}, "cli")
	require.NoError(t, err)
	l.Debugw("slot", map[string]any{"station": "R1"})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"station":"R1"`)
	assert.Contains(t, string(data), `"component":"cli"`)
}

func TestNewFromConfigBadLevel(t *testing.T) {
	_, _, err := NewFromConfig(config.LoggingConfig{Level: "loud"}, "cli")
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.With(map[string]any{"a": 1}).Errorf("ignored")
}
