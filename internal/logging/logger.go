// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every line written by the process logger.
const ServiceName = "wikithat"

// Config controls the process logger. Zero values fall back to
// info-level JSON on stderr with timestamps.
type Config struct {
	Level  string // trace, debug, info, warn, error, fatal, panic, disabled
	Format string // json or console
	Caller bool

	// NoTimestamp drops the time field. Useful for golden-output tests.
	NoTimestamp bool

	Output io.Writer
}

// DefaultConfig returns info-level JSON logging to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before cmd/server calls Init
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"
	Init(DefaultConfig())
}

// Init rebuilds the process logger from cfg. Safe to call repeatedly.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	l := build(cfg)
	current.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	zctx := zerolog.New(out).With().Str("service", ServiceName)
	if !cfg.NoTimestamp {
		zctx = zctx.Timestamp()
	}
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	return zctx.Logger()
}

// parseLevel accepts zerolog level names plus "warning". Unknown or empty
// input means info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger swaps the process logger, typically for a NewTestLogger.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

func base() *zerolog.Logger {
	return current.Load()
}

// With opens a child context on the process logger.
func With() zerolog.Context { return base().With() }

// Debug, Info, Warn and Error start events on the process logger.
func Debug() *zerolog.Event { return base().Debug() }
func Info() *zerolog.Event { return base().Info() }
func Warn() *zerolog.Event { return base().Warn() }
func Error() *zerolog.Event { return base().Error() }

// Fatal logs and then exits with status 1.
func Fatal() *zerolog.Event { return base().Fatal() }

// Err starts an error-level event carrying err, or info-level when err is nil.
func Err(err error) *zerolog.Event { return base().Err(err) }

// WithComponent tags a child logger, e.g. WithComponent("catalog").
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// NewTestLogger writes debug-and-above JSON to w without timestamps.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel)
}
