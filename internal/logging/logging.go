// Package logging configures the global slog logger for clipfmt.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// previewLen bounds clipboard text echoed into debug logs.
const previewLen = 120

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// New builds a logger writing to w. FormatAuto picks tinter on a terminal and
// JSON everywhere else.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	useTint := format == FormatText || (format == FormatAuto && IsTTY(w))

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(h)
}

// Setup configures the global slog logger. Call once after flag/viper parsing.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(New(os.Stderr, format, level))
}

// Resolve picks the level for a process: an explicit levelStr wins, otherwise
// interactive sessions log at debug and services at info.
func Resolve(interactive bool, levelStr string) slog.Level {
	if levelStr != "" {
		return ParseLevel(levelStr)
	}
	if interactive {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Preview returns text shortened for logging. It is only worth calling when
// debug logging is enabled; see DebugEnabled.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen]) + "…"
}

// DebugEnabled reports whether the default logger emits debug records.
func DebugEnabled() bool {
	return slog.Default().Enabled(context.Background(), slog.LevelDebug)
}
