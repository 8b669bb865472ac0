// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package proxyauthtest provides an in-memory host for testing code that calls proxyauth.Setup.
package proxyauthtest

import (
	"context"
	"sync"

	"github.com/saucelabs/proxyauth"
)

// Registration is a listener registered with Host.
type Registration struct {
	Listener      proxyauth.AuthListener
	Filter        proxyauth.RequestFilter
	ExtraInfoSpec []proxyauth.ExtraInfoSpec
}

// Host records proxy settings calls and listener registrations.
type Host struct {
	// SetErr is returned from Set when not nil.
	SetErr error

	mu            sync.Mutex
	settings      []proxyauth.SettingsDetails
	registrations []Registration
}

var (
	_ proxyauth.ProxySettings      = (*Host)(nil)
	_ proxyauth.AuthRequiredEvents = (*Host)(nil)
)

func NewHost() *Host {
	return &Host{}
}

func (h *Host) Set(_ context.Context, details proxyauth.SettingsDetails) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.settings = append(h.settings, details)
	return h.SetErr
}

func (h *Host) AddListener(l proxyauth.AuthListener, filter proxyauth.RequestFilter, extraInfoSpec []proxyauth.ExtraInfoSpec) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.registrations = append(h.registrations, Registration{
		Listener:      l,
		Filter:        filter,
		ExtraInfoSpec: extraInfoSpec,
	})
	return nil
}

// Settings returns all submitted settings in call order.
func (h *Host) Settings() []proxyauth.SettingsDetails {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]proxyauth.SettingsDetails(nil), h.settings...)
}

// Registrations returns all registered listeners in registration order.
func (h *Host) Registrations() []Registration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Registration(nil), h.registrations...)
}

// Fire calls every registered listener with the challenge and returns their responses.
func (h *Host) Fire(ch proxyauth.AuthChallenge) []proxyauth.AuthResponse {
	regs := h.Registrations()
	res := make([]proxyauth.AuthResponse, 0, len(regs))
	for _, r := range regs {
		res = append(res, r.Listener(ch))
	}
	return res
}
