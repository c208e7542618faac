package logger

import (
	"context"
	"log/slog"
	"os"

	"rag-chatbot-platform/internal/config"
)

// Logger is nil until InitLogger runs. The package helpers treat a nil
// logger as a no-op, so library code may log unconditionally and unit
// tests stay quiet.
var Logger *slog.Logger

// InitLogger wires structured JSON logging to stdout. Debug mode lowers
// the level and records source locations.
func InitLogger(cfg *config.Config) {
	debug := cfg.GinMode == "debug"

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	Logger = slog.New(handler).With("service", "rag-chatbot-platform")
	Logger.Info("Structured logging initialized", "level", level.String())
}

func Debug(msg string, args ...any) { logAt(slog.LevelDebug, msg, args...) }

func Info(msg string, args ...any) { logAt(slog.LevelInfo, msg, args...) }

func Warn(msg string, args ...any) { logAt(slog.LevelWarn, msg, args...) }

func Error(msg string, args ...any) { logAt(slog.LevelError, msg, args...) }

func logAt(level slog.Level, msg string, args ...any) {
	if Logger == nil {
		return
	}
	Logger.Log(context.Background(), level, msg, args...)
}
