// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler routes slog records into zerolog. suture's event hook
// (sutureslog) only speaks *slog.Logger, so the supervisor tree logs
// through this bridge.
type SlogHandler struct {
	logger zerolog.Logger
	prefix string // open groups joined by "."
}

// NewSlogHandler bridges to the current process logger.
func NewSlogHandler() *SlogHandler {
	return &SlogHandler{logger: Logger()}
}

// NewSlogLogger is slog.New(NewSlogHandler()).
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler())
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	zl := zerologLevel(level)
	return zl >= zerolog.GlobalLevel() && zl >= h.logger.GetLevel()
}

//nolint:gocritic // slog.Handler fixes the by-value record
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	var kv []any
	record.Attrs(func(a slog.Attr) bool {
		kv = flatten(kv, h.prefix, a)
		return true
	})

	event := h.logger.WithLevel(zerologLevel(record.Level))
	if len(kv) > 0 {
		event = event.Fields(kv)
	}
	event.Msg(record.Message)
	return nil
}

// WithAttrs bakes attrs into the underlying zerolog context.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var kv []any
	for _, a := range attrs {
		kv = flatten(kv, h.prefix, a)
	}
	if len(kv) == 0 {
		return h
	}
	return &SlogHandler{logger: h.logger.With().Fields(kv).Logger(), prefix: h.prefix}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, prefix: join(h.prefix, name)}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// flatten appends a's key/value pairs to kv, expanding groups into dotted keys.
func flatten(kv []any, prefix string, a slog.Attr) []any {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = join(prefix, a.Key)
		}
		for _, ga := range v.Group() {
			kv = flatten(kv, sub, ga)
		}
		return kv
	}
	if a.Key == "" {
		return kv
	}
	return append(kv, join(prefix, a.Key), v.Any())
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	case level >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
