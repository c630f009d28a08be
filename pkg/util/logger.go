package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// DefaultLoggerConfig returns text logs at info level on stderr. Stdout is
// left alone because it carries command output and MCP traffic.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// ParseLoggerConfig builds a LoggerConfig from user-supplied strings.
// Empty strings keep the defaults; unknown values are rejected.
func ParseLoggerConfig(level, format string) (LoggerConfig, error) {
	cfg := DefaultLoggerConfig()

	if level != "" {
		l := LogLevel(strings.ToLower(level))
		switch l {
		case LevelDebug, LevelInfo, LevelWarn, LevelError:
			cfg.Level = l
		default:
			return cfg, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
		}
	}

	if format != "" {
		f := LogFormat(strings.ToLower(format))
		switch f {
		case FormatJSON, FormatText:
			cfg.Format = f
		default:
			return cfg, fmt.Errorf("unknown log format %q (want json or text)", format)
		}
	}

	return cfg, nil
}

// NewLogger creates a new structured logger with the given configuration
func NewLogger(config LoggerConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a LogLevel to slog.Level
func parseLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault sets the default logger for the slog package
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// DiscardLogger returns a logger that drops everything. Tests use it to keep
// output quiet.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
