package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Environment variables read by Configure
const (
	EnvLevel  = "YT_TREND_LOG_LEVEL"
	EnvFormat = "YT_TREND_LOG_FORMAT"
)

// Configure installs the process-wide slog logger from the environment.
// Output goes to stderr so command output on stdout stays machine readable.
func Configure() {
	slog.SetDefault(New(os.Stderr, os.Getenv(EnvLevel), os.Getenv(EnvFormat)))
}

// New builds a logger writing to w. format is "json" or anything else for text.
func New(w io.Writer, level, format string) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				if ts, ok := attr.Value.Any().(time.Time); ok {
					attr.Value = slog.StringValue(ts.UTC().Format(time.RFC3339))
				}
			}
			return attr
		},
	}

	var handler slog.Handler
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to slog.Level, defaulting to info
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
