// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Scope is the profile the proxy settings apply to.
type Scope string

const (
	RegularScope              Scope = "regular"
	RegularOnlyScope          Scope = "regular_only"
	IncognitoPersistentScope  Scope = "incognito_persistent"
	IncognitoSessionOnlyScope Scope = "incognito_session_only"
)

var ErrUnsupportedScope = errors.New("unsupported scope")

func (s Scope) String() string {
	return string(s)
}

// IsIncognito reports whether the scope targets the incognito profile.
func (s Scope) IsIncognito() bool {
	return s == IncognitoPersistentScope || s == IncognitoSessionOnlyScope
}

func ParseScope(val string) (Scope, error) {
	s := Scope(val)
	switch s {
	case RegularScope, RegularOnlyScope, IncognitoPersistentScope, IncognitoSessionOnlyScope:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScope, val)
	}
}

// SettingsDetails is the argument of the proxy settings set call.
type SettingsDetails struct {
	Value *ProxyConfig `json:"value"`
	Scope Scope        `json:"scope"`
}

// ProxySettings is the host proxy settings API.
type ProxySettings interface {
	Set(ctx context.Context, details SettingsDetails) error
}

// AllURLs matches any URL with a scheme permitted by the host.
const AllURLs = "<all_urls>"

// RequestFilter limits the requests a listener is called for.
type RequestFilter struct {
	URLs []string `json:"urls"`
}

// AllURLsFilter returns a filter matching every URL.
func AllURLsFilter() RequestFilter {
	return RequestFilter{URLs: []string{AllURLs}}
}

// ExtraInfoSpec modifies how a listener is called.
type ExtraInfoSpec string

const (
	Blocking        ExtraInfoSpec = "blocking"
	AsyncBlocking   ExtraInfoSpec = "asyncBlocking"
	ResponseHeaders ExtraInfoSpec = "responseHeaders"
)

// IsBlocking reports whether the host should wait for and use the listener response.
func IsBlocking(spec []ExtraInfoSpec) bool {
	return slices.Contains(spec, Blocking) || slices.Contains(spec, AsyncBlocking)
}

// AuthRequiredEvents is the host "authentication required" event.
type AuthRequiredEvents interface {
	AddListener(l AuthListener, filter RequestFilter, extraInfoSpec []ExtraInfoSpec) error
}
