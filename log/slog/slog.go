// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package slog

import (
	"context"
	"io"
	"log/slog"
	"os"

	plog "github.com/saucelabs/proxyauth/log"
)

func Default() *Logger {
	return New(plog.DefaultConfig())
}

func Debug() *Logger {
	return New(&plog.Config{Level: plog.DebugLevel, Format: plog.TextFormat})
}

var _ plog.StructuredLogger = &Logger{}

type Option func(*Logger)

// WithOnError allows to set a function that is called when an error is logged.
func WithOnError(f func(name string)) Option {
	return func(l *Logger) {
		l.onError = f
	}
}

// WithWriter overrides the output, it takes precedence over Config.File.
func WithWriter(w io.Writer) Option {
	return func(l *Logger) {
		l.w = w
	}
}

// Logger implements log.StructuredLogger on top of log/slog.
type Logger struct {
	log     *slog.Logger
	cfg     plog.Config
	w       io.Writer
	file    *plog.RotatableFile
	name    string
	onError func(name string)
}

func New(cfg *plog.Config, opts ...Option) *Logger {
	l := &Logger{
		cfg: *cfg,
	}
	for _, opt := range opts {
		opt(l)
	}

	w := l.w
	if w == nil {
		w = os.Stdout
		if cfg.File != nil {
			l.file = plog.NewRotatableFile(cfg.File)
			w = l.file
		}
	}

	hops := &slog.HandlerOptions{Level: toSlogLevel(cfg.Level), ReplaceAttr: replaceAttr}
	var h slog.Handler
	if cfg.Format == plog.JSONFormat {
		h = slog.NewJSONHandler(w, hops)
	} else {
		h = slog.NewTextHandler(w, hops)
	}
	l.log = slog.New(h)

	return l
}

func (l *Logger) Handler() slog.Handler {
	return l.log.Handler()
}

func (l *Logger) Error(msg string, args ...any) {
	if l.onError != nil {
		l.onError(l.name)
	}
	l.log.Error(msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	if l.onError != nil {
		l.onError(l.name)
	}
	l.log.ErrorContext(ctx, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log.WarnContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log.InfoContext(ctx, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log.DebugContext(ctx, msg, args...)
}

func (l *Logger) With(args ...any) plog.StructuredLogger {
	c := *l
	c.log = c.log.With(args...)
	return &c
}

// Named returns a copy of the logger that adds name=<name> to every record.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	c.log = c.log.With("name", name)
	return &c
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func toSlogLevel(level plog.Level) slog.Level {
	switch level {
	case plog.ErrorLevel:
		return slog.LevelError
	case plog.WarnLevel:
		return slog.LevelWarn
	case plog.DebugLevel:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
