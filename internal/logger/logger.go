// Package logger is kaizen's process-wide slog text logger. It writes to
// stderr so the MCP stdio transport can own stdout.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger

func init() {
	log = newLogger(os.Stderr, levelFromEnv())
}

// levelFromEnv reads KAIZEN_LOG_LEVEL (debug, info, warn, error).
// KAIZEN_DEBUG=true forces debug.
func levelFromEnv() slog.Level {
	if os.Getenv("KAIZEN_DEBUG") == "true" {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KAIZEN_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetOutput rebuilds the logger on w, re-reading the level from the
// environment, which a .env file may have changed since init.
func SetOutput(w io.Writer) {
	log = newLogger(w, levelFromEnv())
}

func Debug(msg string, args ...any) { log.Debug(msg, args...) }

func Info(msg string, args ...any) { log.Info(msg, args...) }

func Warn(msg string, args ...any) { log.Warn(msg, args...) }

func Error(msg string, args ...any) { log.Error(msg, args...) }
