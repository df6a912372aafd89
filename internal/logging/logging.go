package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the package-level default slog logger, writing to
// every given destination. With no destinations it writes to stderr, which
// keeps stdout free for dataset output. Format "json" selects JSONHandler,
// anything else TextHandler.
func Init(level slog.Level, format string, dests ...io.Writer) {
	var w io.Writer = os.Stderr
	switch len(dests) {
	case 0:
	case 1:
		w = dests[0]
	default:
		w = io.MultiWriter(dests...)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
