// Package log is the process-wide structured logger, a thin slog
// wrapper so callers never touch handler setup.
package log

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Init installs the global logger at the given level. The first call
// wins; later calls are no-ops. Levels: debug, info, warn, error.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		return
	}
	logger = slog.New(newHandler(parseLevel(level)))
	slog.SetDefault(logger)
}

// parseLevel maps a level name to its slog level. Anything
// unrecognized falls back to info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHandler picks the output format: JSON when LOG_FORMAT=json or in
// production, human-readable text otherwise. Logs go to stderr so
// they never interleave with the CLI conversation output.
func newHandler(lvl slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if os.Getenv("LOG_FORMAT") == "json" || os.Getenv("GO_ENV") == "production" {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// L returns the global logger, initializing it at info if Init was
// never called.
func L() *slog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		Init("info")
		return L()
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
