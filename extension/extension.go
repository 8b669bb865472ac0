// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package extension renders proxy settings and auth listeners as an unpacked browser extension.
package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/log"
)

// Extension records the proxy settings and listeners and renders them as a browser extension.
// Listeners are called once while rendering, their answer is written to the background script.
type Extension struct {
	version ManifestVersion
	log     log.StructuredLogger

	mu        sync.Mutex
	settings  *proxyauth.SettingsDetails
	listeners []listener
}

type listener struct {
	fn     proxyauth.AuthListener
	filter proxyauth.RequestFilter
	spec   []proxyauth.ExtraInfoSpec
}

var (
	_ proxyauth.ProxySettings      = (*Extension)(nil)
	_ proxyauth.AuthRequiredEvents = (*Extension)(nil)
)

func New(v ManifestVersion, log log.StructuredLogger) *Extension {
	return &Extension{
		version: v,
		log:     log,
	}
}

func (e *Extension) Set(_ context.Context, details proxyauth.SettingsDetails) error {
	if _, err := proxyauth.ParseScope(details.Scope.String()); err != nil {
		return err
	}
	if err := details.Value.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = &proxyauth.SettingsDetails{
		Value: details.Value.Clone(),
		Scope: details.Scope,
	}
	return nil
}

func (e *Extension) AddListener(l proxyauth.AuthListener, filter proxyauth.RequestFilter, extraInfoSpec []proxyauth.ExtraInfoSpec) error {
	if l == nil {
		return errors.New("listener is nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener{fn: l, filter: filter, spec: extraInfoSpec})
	return nil
}

// Bundle renders the extension files.
func (e *Extension) Bundle() (*Bundle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.settings == nil {
		return nil, errors.New("proxy settings not set")
	}
	if len(e.listeners) == 0 {
		return nil, errors.New("no auth listener registered")
	}

	d := &backgroundData{
		Config: e.settings.Value,
		Scope:  e.settings.Scope,
	}
	for i, l := range e.listeners {
		spec := e.version.listenerSpec(l.spec)
		if spec == nil {
			spec = []proxyauth.ExtraInfoSpec{}
		}

		// The listener has no request to look at, an empty challenge stands in for all of them.
		res := l.fn(proxyauth.AuthChallenge{IsProxy: true, Count: 1})
		if proxyauth.IsBlocking(spec) && res.IsZero() {
			return nil, fmt.Errorf("listener %d: %w", i, proxyauth.ErrMissingCredential)
		}
		e.log.Debug("listener rendered", "index", i, "filter", l.filter.URLs, "extra_info_spec", spec)

		d.Listeners = append(d.Listeners, backgroundListener{
			Async:         e.version == ManifestV3 && proxyauth.IsBlocking(spec),
			Response:      res,
			Filter:        l.filter,
			ExtraInfoSpec: spec,
		})
	}

	bg, err := renderBackground(d)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", BackgroundFile, err)
	}
	m, err := json.MarshalIndent(NewManifest(e.version), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ManifestFile, err)
	}

	return &Bundle{
		Manifest:   append(m, '\n'),
		Background: bg,
	}, nil
}
