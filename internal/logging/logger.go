package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Format selects the log handler.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Options configures New.
type Options struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr, keeping stdout free for documents and MCP stdio.
	Output io.Writer
}

// New creates a configured application logger.
// It standardizes common keys (e.g., "error" -> "err").
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	switch opts.Format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: replaceAttr}))
	case FormatPretty:
		return slog.New(log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           charmLevel(opts.Level),
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: replaceAttr}))
	}
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

func charmLevel(l slog.Level) log.Level {
	switch {
	case l <= slog.LevelDebug:
		return log.DebugLevel
	case l <= slog.LevelInfo:
		return log.InfoLevel
	case l <= slog.LevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// ParseFormat accepts text, json or pretty. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatPretty:
		return f, nil
	default:
		return "", fmt.Errorf("invalid log format %q", s)
	}
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
