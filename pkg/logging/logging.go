// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup()                               // level from LOG_LEVEL
//	logging.SetupTo(f, logging.ParseLevel("warn")) // terminal: log to a file
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging on stderr at the LOG_LEVEL level.
func Setup() {
	SetupTo(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging on stderr at the given level.
func SetupWithLevel(level slog.Level) {
	SetupTo(os.Stderr, level)
}

// SetupTo installs a tint handler writing to w as the default logger.
func SetupTo(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(w, level)))
}

// NewHandler returns the tint handler used by Setup. Color is disabled
// when w is not a terminal-backed stderr.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    w != os.Stderr,
	})
}

// ParseLevel maps debug, warn and error to their slog levels; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
