package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"log/slog"
)

// Options configure the process logger.
type Options struct {
	Level slog.Level
	// FilePath enables an additional JSON log written to a rotating file when non-empty.
	FilePath string
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates the process logger. Text logs go to w and, if configured, JSON logs to a rotating file.
// The returned io.Closer closes the log file.
func NewLogger(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	handlerOpts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       opts.Level,
		ReplaceAttr: nil,
	}
	var (
		handler slog.Handler = slog.NewTextHandler(w, handlerOpts)
		closer  io.Closer    = nopCloser{}
	)
	if opts.FilePath != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10 //nolint:mnd // megabytes
		}
		rotator := &lumberjack.Logger{ //nolint:exhaustruct // defaults are fine for the rest
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: 5,  //nolint:mnd // files
			MaxAge:     30, //nolint:mnd // days
			Compress:   true,
		}
		handler = NewFanoutHandler(handler, slog.NewJSONHandler(rotator, handlerOpts))
		closer = rotator
	}
	return slog.New(NewContextHandler(handler)), closer
}

// ParseLevel parses a level name such as "debug" or "WARN", falling back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
