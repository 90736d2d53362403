// Package log provides the process-wide structured logger for go-wayfinder.
// Packages receive a *slog.Logger explicitly; commands build it here.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// EnvFormat selects the output format. When unset, GO_ENV=production
// selects JSON.
const EnvFormat = "LOG_FORMAT"

var (
	logger *slog.Logger
	once   sync.Once
)

// ParseLevel accepts debug, info, warn or error, optionally with an offset
// such as "debug+2". Matching is case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: invalid level %q", s)
	}
	return lvl, nil
}

// New builds a logger writing to w. Unknown levels fall back to info and
// unknown formats to text.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envFormat() string {
	if f := os.Getenv(EnvFormat); f != "" {
		return f
	}
	if os.Getenv("GO_ENV") == "production" {
		return FormatJSON
	}
	return FormatText
}

// Init installs the global logger at level on stdout. Later calls are no-ops.
func Init(level string) {
	once.Do(func() {
		logger = New(os.Stdout, level, envFormat())
		slog.SetDefault(logger)
	})
}

// L returns the global logger, initializing it at info level if needed.
func L() *slog.Logger {
	Init("info")
	return logger
}

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
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
