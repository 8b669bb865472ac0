// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/saucelabs/proxyauth/log"
)

// DispatchResult is the outcome of dispatching a challenge.
type DispatchResult string

const (
	Answered  DispatchResult = "answered"
	Cancelled DispatchResult = "cancelled"
	Unhandled DispatchResult = "unhandled"
)

type registeredListener struct {
	id       int
	fn       AuthListener
	patterns []*MatchPattern
	blocking bool
}

// Dispatcher keeps registered auth listeners and dispatches challenges to them.
// It implements AuthRequiredEvents and is shared by the hosts that see the challenges themselves.
// Registering the same listener twice is allowed and results in two registrations.
type Dispatcher struct {
	log log.StructuredLogger

	mu        sync.RWMutex
	listeners []registeredListener
	nextID    int
}

var _ AuthRequiredEvents = (*Dispatcher)(nil)

func NewDispatcher(log log.StructuredLogger) *Dispatcher {
	return &Dispatcher{
		log: log,
	}
}

func (d *Dispatcher) AddListener(l AuthListener, filter RequestFilter, extraInfoSpec []ExtraInfoSpec) error {
	if l == nil {
		return fmt.Errorf("listener is nil")
	}
	patterns, err := compileFilter(filter)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.listeners = append(d.listeners, registeredListener{
		id:       d.nextID,
		fn:       l,
		patterns: patterns,
		blocking: IsBlocking(extraInfoSpec),
	})
	d.log.Debug("auth listener registered", "id", d.nextID, "filter", filter.URLs, "blocking", IsBlocking(extraInfoSpec))

	return nil
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Dispatch calls the listeners matching the challenge URL in registration order.
// Non-blocking listeners are notified and their response is ignored.
// The first blocking listener that answers decides the outcome, later ones are still notified.
func (d *Dispatcher) Dispatch(ch AuthChallenge) (AuthResponse, DispatchResult) {
	u, err := url.Parse(ch.URL)
	if err != nil {
		d.log.Warn("auth challenge with invalid URL", "url", ch.URL, "error", err)
		return AuthResponse{}, Unhandled
	}

	d.mu.RLock()
	listeners := slices.Clone(d.listeners)
	d.mu.RUnlock()

	var (
		res     AuthResponse
		decided bool
	)
	for _, l := range listeners {
		if !matchAny(l.patterns, u) {
			continue
		}

		r, ok := d.call(l, ch)
		if !ok || !l.blocking || decided || r.IsZero() {
			continue
		}
		res, decided = r, true
	}

	switch {
	case !decided:
		return AuthResponse{}, Unhandled
	case res.Cancel:
		return res, Cancelled
	default:
		return res, Answered
	}
}

// call runs the listener, a panic is reported as not handled.
func (d *Dispatcher) call(l registeredListener, ch AuthChallenge) (res AuthResponse, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("auth listener failed", "id", l.id, "request_id", ch.RequestID, "panic", r)
			res, ok = AuthResponse{}, false
		}
	}()
	return l.fn(ch), true
}
