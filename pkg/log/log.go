// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ModuleKey is the attribute naming the component that wrote a record.
const ModuleKey = "module"

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewHandler returns a handler writing to w. Unknown formats get JSON.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if format == FormatText {
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewJSONHandler(w, opts)
}

// Setup installs the default logger. The API logs JSON; the CLI logs text to
// stderr so stdout only carries its report.
func Setup(w io.Writer, format Format, level string) {
	slog.SetDefault(slog.New(NewHandler(w, format, ParseLevel(level))))
}

func WithModule(module string) *slog.Logger {
	return slog.With(ModuleKey, module)
}
