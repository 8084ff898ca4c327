// Package logger is the operational logger for the service process.
// It is separate from the per-profile audit streams in pkg/audit.
package logger

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/workgrid/studio/pkg/appdir"
)

var (
	log       *slog.Logger
	logWriter *lumberjack.Logger
)

// Init sets up the global JSON logger with rotation. An empty path
// defaults to <base>/studio.log; an unknown level falls back to info.
func Init(level, path string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	if path == "" {
		base, err := appdir.Base()
		if err != nil {
			base = os.TempDir()
		}
		_ = os.MkdirAll(base, 0o755)
		path = filepath.Join(base, "studio.log")
	}

	logWriter = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}

	log = slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(log)
}

// Close flushes and closes the rotating writer.
func Close() {
	if logWriter != nil {
		_ = logWriter.Close()
	}
}

func getLogger() *slog.Logger {
	if log != nil {
		return log
	}
	return slog.Default()
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { getLogger().Info(msg, args...) }

// Warn logs a warning.
func Warn(msg string, args ...any) { getLogger().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }
