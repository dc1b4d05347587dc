package telemetry

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the process-wide logger. In dev-like environments the
// output is a human-readable console writer instead of JSON lines.
func Setup(service, level, env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	out := zerolog.New(os.Stdout)
	if env == "dev" || env == "local" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	logger = out.With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(parseLevel(level))
}

// L returns the configured logger.
func L() *zerolog.Logger {
	return &logger
}

func parseLevel(value string) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value))); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}
