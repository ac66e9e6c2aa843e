package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a new logger; format "json" writes raw JSON lines, anything else pretty console output
func New(level, format, service string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLogLevel(level))

	var out io.Writer = os.Stdout
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	ctx := zerolog.New(out).
		With().
		Timestamp().
		Caller()
	if service != "" {
		ctx = ctx.Str("service", service)
	}

	return ctx.Logger()
}

// parseLogLevel parses log level string to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
