// Package logging builds the zerolog logger shared by the CLI, the HTTP
// service and the bundling engine.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/config"
)

// New returns a logger writing to w at the configured level. Format
// "console" produces human-readable lines; anything else is JSON. A nil w
// means os.Stderr, which keeps stdout free for the merged configuration.
//
// Unknown levels fall back to info.
func New(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ForApp returns a child logger tagged with the application name and version.
func ForApp(l zerolog.Logger, app config.AppInfo) zerolog.Logger {
	return l.With().
		Str("app", app.Name).
		Str("version", app.Version).
		Logger()
}
