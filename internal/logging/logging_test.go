package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC, "info")

	l.Info("scan_received", map[string]any{"file_count": 2})
	l.Error("scan_ingest_failed", nil, errors.New("disk full"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "scan_received", lines[0]["msg"])
	assert.Equal(t, float64(2), lines[0]["file_count"])
	assert.NotEmpty(t, lines[0]["ts"])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "disk full", lines[1]["error"])
}

func TestLogger_TimestampLocationAndLevelNames(t *testing.T) {
	var buf bytes.Buffer
	wib := time.FixedZone("WIB", 7*60*60)
	l := New(&buf, wib, "debug")

	l.Debug("d", nil)
	l.Warn("w", map[string]any{"files": []string{"a.png", "b.png"}})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, []any{"a.png", "b.png"}, lines[1]["files"])
	assert.NotContains(t, lines[0], "time")

	ts, ok := lines[0]["ts"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(ts, "+07:00"), ts)
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil, "warn")

	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warn("w", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "w", lines[0]["msg"])
}

func TestLogger_WithAndContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, time.UTC, "debug")

	ctx := ContextWithRequestID(context.Background(), "rid-1")
	tid, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	sid, _ := trace.SpanIDFromHex("0102030405060708")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid}))

	base.With(map[string]any{"component": "ingest"}).WithContext(ctx).Info("x", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ingest", lines[0]["component"])
	assert.Equal(t, "rid-1", lines[0]["request_id"])
	assert.Equal(t, tid.String(), lines[0]["trace_id"])
}

func TestLogger_WithContextWithoutValuesReturnsSame(t *testing.T) {
	l := Discard()
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
