// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log defines the logger interface of proxyauth and its configuration.
// Implementations live in subpackages.
package log

import (
	"context"
	"os"
)

// StructuredLogger logs messages with key value pairs.
// Setup and the hosts log through it, the CLI backs it with log/slog.
type StructuredLogger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)

	ErrorContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)

	With(args ...any) StructuredLogger
}

var (
	DefaultFileFlags = os.O_CREATE | os.O_APPEND | os.O_WRONLY

	DefaultFileMode os.FileMode = 0o600
	DefaultDirMode  os.FileMode = 0o700
)

// NopLogger discards everything.
var NopLogger StructuredLogger = nopLogger{} //nolint:gochecknoglobals // stateless

type nopLogger struct{}

func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

func (nopLogger) ErrorContext(context.Context, string, ...any) {}
func (nopLogger) WarnContext(context.Context, string, ...any)  {}
func (nopLogger) InfoContext(context.Context, string, ...any)  {}
func (nopLogger) DebugContext(context.Context, string, ...any) {}

func (l nopLogger) With(...any) StructuredLogger { return l }
