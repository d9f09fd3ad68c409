// Package logging configures structured logging for log/slog: coloured output
// through tint for terminals, or JSON lines for log collectors.
//
// Usage:
//
//	logging.Setup()                          // level and format from LOG_LEVEL / LOG_FORMAT
//	logging.SetupWith("debug", "json")       // explicit values, e.g. from config
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override, tint output
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT: text, json (default: text)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures logging from the LOG_LEVEL and LOG_FORMAT env vars.
func Setup() {
	SetupWith(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// SetupWith configures logging from a level name and a format name.
func SetupWith(level, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, ParseLevel(level), format)))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, "text")))
}

// NewHandler returns a JSON handler for format "json" and a tint handler otherwise.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
