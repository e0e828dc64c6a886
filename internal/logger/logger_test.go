package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesStructuredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(WithLevel("debug"), WithOutputPaths([]string{path}))
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	l.WithFields(NewField("instrument_id", "artist-1")).InfoContext(ctx, "order accepted", NewField("order_id", "o-1"))
	l.Error(errors.New("boom"), NewField("task", "record_trade"))
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "order accepted", entries[0]["message"])
	assert.Equal(t, "artist-1", entries[0]["instrument_id"])
	assert.Equal(t, "o-1", entries[0]["order_id"])
	assert.Equal(t, "req-1", entries[0]["request_id"])

	assert.Equal(t, "boom", entries[1]["message"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.Contains(t, entries[1]["stacktrace"], "TestLogger_WritesStructuredEntries")
}

func TestLogger_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(WithLevel("warn"), WithOutputPaths([]string{path}))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestRequestID_EmptyContext(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	Nop().InfoContext(context.Background(), "ignored")
	Nop().Error(nil)
}
