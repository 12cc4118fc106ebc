package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/myrjola/casefile/internal/logging"
	"github.com/stretchr/testify/require"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_contextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.NewLogger(&buf, logging.Options{Level: slog.LevelDebug})
	t.Cleanup(func() { _ = closer.Close() })

	ctx := logging.WithAttrs(context.Background(), slog.String("mode", "script"))
	ctx = logging.WithAttrs(ctx, slog.String("tier", "backup"))
	logger.LogAttrs(ctx, slog.LevelInfo, "dispatched")

	out := buf.String()
	require.Contains(t, out, "msg=dispatched")
	require.Contains(t, out, "mode=script")
	require.Contains(t, out, "tier=backup")
}

func TestNewLogger_rotatingFile(t *testing.T) {
	var (
		buf     bytes.Buffer
		logPath = filepath.Join(t.TempDir(), "casefile.log")
	)
	logger, closer := logging.NewLogger(&buf, logging.Options{Level: slog.LevelInfo, FilePath: logPath})

	logger.LogAttrs(context.Background(), slog.LevelDebug, "hidden")
	logger.LogAttrs(context.Background(), slog.LevelWarn, "probe failed", slog.String("url", "https://example.com/a.jpg"))
	require.NoError(t, closer.Close())

	require.Contains(t, buf.String(), "probe failed")
	require.NotContains(t, buf.String(), "hidden")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Equal(t, "probe failed", record["msg"])
	require.Equal(t, "https://example.com/a.jpg", record["url"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}
