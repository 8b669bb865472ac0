// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// closeGrace is how long a replaced file stays open for in-flight writes.
const closeGrace = 5 * time.Second

// RotatableFile is a log file that is reopened on SIGHUP, so that it works with logrotate.
type RotatableFile struct {
	f    atomic.Pointer[os.File]
	stop chan struct{}
	once sync.Once
}

func NewRotatableFile(f *os.File) *RotatableFile {
	w := &RotatableFile{
		stop: make(chan struct{}),
	}
	w.f.Store(f)
	go w.reopenOnSIGHUP()
	return w
}

func (w *RotatableFile) Write(p []byte) (n int, err error) {
	return w.f.Load().Write(p)
}

func (w *RotatableFile) Name() string {
	return w.f.Load().Name()
}

func (w *RotatableFile) Close() error {
	w.once.Do(func() {
		close(w.stop)
	})
	return w.f.Load().Close()
}

// Reopen opens the file by name and swaps it in, the old file is closed after a grace period.
func (w *RotatableFile) Reopen() error {
	nf, err := os.OpenFile(w.Name(), DefaultFileFlags, DefaultFileMode)
	if err != nil {
		return err
	}
	old := w.f.Swap(nf)

	time.AfterFunc(closeGrace, func() {
		if err := old.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close old log file: %v\n", err)
		}
	})

	return nil
}

func (w *RotatableFile) reopenOnSIGHUP() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-w.stop:
			return
		case <-ch:
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to rotate log file: %v\n", err)
			}
		}
	}
}
