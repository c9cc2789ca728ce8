// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger on stderr, or a JSON logger writing to a rotated
// file under dir when dir is set.
func New(level, dir string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if dir == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log dir %s: %v\n", dir, err)
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "flightops.slog"),
		MaxSize:    64, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	l := NewWithWriter(w, opts)
	l.Info("logging started",
		slog.String("file", w.Filename),
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH))
	return l
}

func NewWithWriter(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, opts))
}
