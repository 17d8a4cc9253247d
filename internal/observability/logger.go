package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	// Unknown or empty levels fall back to info.
	Level string

	// Format is json, or console/pretty for human-readable lines.
	Format string

	// Output is stdout, stderr or discard.
	Output string

	// AddSource adds the caller's file and line to each entry.
	AddSource bool

	// TimeFormat is the timestamp layout. Defaults to RFC 3339.
	TimeFormat string
}

// NewLogger creates the process logger described by cfg.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	return NewLoggerTo(outputWriter(cfg.Output), cfg)
}

// NewLoggerTo is NewLogger writing to w; cfg.Output is ignored.
func NewLoggerTo(w io.Writer, cfg LoggingConfig) zerolog.Logger {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}
	return ctx.Logger().Level(parseLevel(cfg.Level))
}

func outputWriter(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}

// parseLevel maps a configured level name to a zerolog level.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithRequestContext adds the request and correlation ids that are set.
func WithRequestContext(logger zerolog.Logger, requestID, correlationID string) zerolog.Logger {
	ctx := logger.With()
	if requestID != "" {
		ctx = ctx.Str("request_id", requestID)
	}
	if correlationID != "" {
		ctx = ctx.Str("correlation_id", correlationID)
	}
	return ctx.Logger()
}

// WithSearchContext tags a logger with the query being served.
func WithSearchContext(logger zerolog.Logger, query, recordType string) zerolog.Logger {
	return logger.With().
		Str("query", query).
		Str("type", recordType).
		Logger()
}

// WithRecordContext tags a logger with a journal or article lookup key.
func WithRecordContext(logger zerolog.Logger, kind, key string) zerolog.Logger {
	return logger.With().
		Str("record_kind", kind).
		Str("record_key", key).
		Logger()
}

// WithSourceContext tags a logger with a content backend endpoint.
func WithSourceContext(logger zerolog.Logger, source, endpoint string) zerolog.Logger {
	return logger.With().
		Str("source", source).
		Str("endpoint", endpoint).
		Logger()
}
