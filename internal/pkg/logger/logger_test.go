package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: "warn", Env: "production", Version: "v1.2.3"})

	log.Info("dropped")
	assert.Zero(t, buf.Len())
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))

	log.Warn("kept", "session_id", "abc")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry[Schema.Message])
	assert.Equal(t, appName, entry["app"])
	assert.Equal(t, "v1.2.3", entry["version"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "abc", entry["session_id"])
}
