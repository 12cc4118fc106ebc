package testhelpers

import (
	"github.com/myrjola/casefile/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a debug level logger writing to logSink such as io.Discard or a buffer the test inspects.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}
