// Package logging provides zerolog-based structured logging for the
// wrapper and worker binaries.
//
// Every log line carries a component marker so operators can tell the
// supervisor loop, the update applier, the console channel, and the
// collector apart in a shared journal:
//
//	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
//	updLog := logging.Component(logger, "updater")
//	updLog.Info().Str("jar", path).Msg("update applied")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Level is one of debug, info, warn, error;
// unknown values fall back to info. Format is "json" or "console".
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component marker.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
