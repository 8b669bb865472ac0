// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"context"
	"slices"
	"sync"
)

// Entry is a message logged to a Recorder.
type Entry struct {
	Level Level
	Msg   string
	Args  []any
}

// Arg returns the value logged under key, or nil.
func (e Entry) Arg(key string) any {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1]
		}
	}
	return nil
}

// Recorder is a StructuredLogger that keeps entries in memory.
// It is safe for concurrent use, loggers returned by With share the entries.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	args    []any
}

var _ StructuredLogger = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		mu:      new(sync.Mutex),
		entries: new([]Entry),
	}
}

// Entries returns a copy of the entries logged at level or above.
func (r *Recorder) Entries(level Level) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []Entry
	for _, e := range *r.entries {
		if e.Level <= level {
			res = append(res, e)
		}
	}
	return res
}

func (r *Recorder) record(level Level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, Entry{
		Level: level,
		Msg:   msg,
		Args:  append(slices.Clip(r.args), args...),
	})
}

func (r *Recorder) Error(msg string, args ...any) { r.record(ErrorLevel, msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record(WarnLevel, msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record(InfoLevel, msg, args) }
func (r *Recorder) Debug(msg string, args ...any) { r.record(DebugLevel, msg, args) }

func (r *Recorder) ErrorContext(_ context.Context, msg string, args ...any) {
	r.record(ErrorLevel, msg, args)
}

func (r *Recorder) WarnContext(_ context.Context, msg string, args ...any) {
	r.record(WarnLevel, msg, args)
}

func (r *Recorder) InfoContext(_ context.Context, msg string, args ...any) {
	r.record(InfoLevel, msg, args)
}

func (r *Recorder) DebugContext(_ context.Context, msg string, args ...any) {
	r.record(DebugLevel, msg, args)
}

func (r *Recorder) With(args ...any) StructuredLogger {
	c := *r
	c.args = append(slices.Clip(r.args), args...)
	return &c
}
