package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "not JSON: %s", buf.String())
	return entry
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quillpost", "1.2.3", "json", "info", &buf)

	logger.Info("listening", "addr", "127.0.0.1:5000")

	entry := decode(t, &buf)
	assert.Equal(t, "listening", entry["msg"])
	assert.Equal(t, "quillpost", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "127.0.0.1:5000", entry["addr"])
	assert.Contains(t, entry, "time")
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quillpost", "dev", "TEXT", "", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=quillpost")
}

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quillpost", "dev", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Equal(t, "kept", decode(t, &buf)["msg"])
}

func TestSetupWithAttrsKeepsService(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quillpost", "dev", "json", "debug", &buf).With("component", "auth")

	logger.Debug("rejected")

	entry := decode(t, &buf)
	assert.Equal(t, "auth", entry["component"])
	assert.Equal(t, "quillpost", entry["service"])
}

func TestTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quillpost", "dev", "json", "info", &buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
