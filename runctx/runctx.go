// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package runctx runs the long lived parts of a command until one of them fails or the process is signaled.
package runctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// DefaultNotifySignals specifies signals that would cause the context to be canceled.
var DefaultNotifySignals = []os.Signal{ //nolint:gochecknoglobals // constant
	syscall.SIGINT,
	syscall.SIGTERM,
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Group is a collection of named functions that run concurrently.
// The context passed to each function is canceled when any function returns or a signal from NotifySignals is received.
// Functions must return when the context is canceled, context.Canceled returned after cancellation is not an error.
type Group struct {
	NotifySignals []os.Signal
	tasks         []task
}

func NewGroup() *Group {
	return &Group{}
}

// Add registers fn under name, the name prefixes errors returned by fn.
func (g *Group) Add(name string, fn func(ctx context.Context) error) {
	g.tasks = append(g.tasks, task{name: name, fn: fn})
}

// Len returns the number of registered functions.
func (g *Group) Len() int {
	return len(g.tasks)
}

func (g *Group) Run() error {
	return g.RunContext(context.Background())
}

func (g *Group) RunContext(ctx context.Context) error {
	sigs := g.NotifySignals
	if len(sigs) == 0 {
		sigs = DefaultNotifySignals
	}
	ctx, unregisterSignals := signal.NotifyContext(ctx, sigs...)
	defer unregisterSignals()

	eg, ctx := errgroup.WithContext(ctx)
	for _, t := range g.tasks {
		t := t
		eg.Go(func() error {
			err := t.fn(ctx)
			if err != nil && !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			return errStopped
		})
	}

	if err := eg.Wait(); !errors.Is(err, errStopped) {
		return err
	}
	return nil
}

// errStopped cancels the group when a function returns without error.
var errStopped = errors.New("stopped")
