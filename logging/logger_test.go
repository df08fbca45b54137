package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelDebug).
		WithMetric("cosine").
		WithK(20).
		WithSide("user").
		WithWorkers(4)

	l.Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "cosine", lines[0]["metric"])
	assert.Equal(t, float64(20), lines[0]["k"])
	assert.Equal(t, "user", lines[0]["side"])
	assert.Equal(t, float64(4), lines[0]["workers"])
}

func TestLogPass(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelDebug)

	l.LogPass(context.Background(), "similarity", 10, time.Millisecond, nil)
	l.LogPass(context.Background(), "neighbors", 10, time.Millisecond, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "similarity", lines[0]["pass"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestLogFitAndSnapshot(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)

	l.LogFit(context.Background(), 100, time.Second, nil)
	l.LogSnapshot(context.Background(), "write", "users.snap", 2048, nil)
	l.LogSnapshot(context.Background(), "open", "users.snap", 0, errors.New("missing"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "fit completed", lines[0]["msg"])
	assert.Equal(t, float64(2048), lines[1]["bytes"])
	assert.Equal(t, "snapshot failed", lines[2]["msg"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogPass(context.Background(), "similarity", 1, 0, errors.New("ignored"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
