package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout reports/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config string (debug, info, warn, error) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
