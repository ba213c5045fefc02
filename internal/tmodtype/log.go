package tmodtype

import (
	"context"
	"log/slog"
)

// LevelTrace is used for per-field reads, below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Trace logs msg at LevelTrace.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// DiscardLogger returns logger, or a logger that drops everything if nil.
func DiscardLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
