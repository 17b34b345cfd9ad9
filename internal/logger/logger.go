// Package logger configures the slog loggers used by the license-server binaries.
//
// dev and test environments log with the tint handler (human readable, coloured),
// staging and prod log JSON so the output can be ingested by the log pipeline.
//
// Each HTTP request gets its own logger (see RequestLogging) which handlers retrieve with ContextRequestLogger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging - it is higher than any level used by the app.
const LevelNone = slog.Level(99)

// ParseLogLevel converts a LOG_LEVEL value to a slog.Level.
// Unrecognised values default to debug.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "off":
		return LevelNone
	default:
		return slog.LevelDebug
	}
}

// InitLogger creates the application logger and installs it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	return initLogger(os.Stdout, level, environment)
}

func initLogger(w io.Writer, level slog.Level, environment string) *slog.Logger {
	var handler slog.Handler

	switch environment {
	case "prod", "staging":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

type requestLogKey struct{}

// requestLog holds the request scoped logger and the attributes that are added to the final request log entry
type requestLog struct {
	logger *slog.Logger

	mu    sync.Mutex
	attrs []slog.Attr
}

func (rl *requestLog) snapshot() []slog.Attr {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return append([]slog.Attr(nil), rl.attrs...)
}

// ContextWithRequestLogger returns a context carrying a request scoped logger.
func ContextWithRequestLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLogKey{}, &requestLog{logger: l})
}

// ContextRequestLogger returns the request scoped logger, or the default logger if there isn't one.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if rl, ok := ctx.Value(requestLogKey{}).(*requestLog); ok && rl.logger != nil {
		return rl.logger
	}
	return slog.Default()
}

// ContextWithLogAttrs records attributes that are included when the request completion is logged.
// it is a no-op if the context was not created by RequestLogging.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	rl, ok := ctx.Value(requestLogKey{}).(*requestLog)
	if !ok {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.attrs = append(rl.attrs, attrs...)
}

func contextLogAttrs(ctx context.Context) []slog.Attr {
	rl, ok := ctx.Value(requestLogKey{}).(*requestLog)
	if !ok {
		return nil
	}
	return rl.snapshot()
}
