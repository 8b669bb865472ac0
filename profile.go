// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"fmt"
	"slices"
	"strings"
)

const (
	SuperproxyHost = "brd.superproxy.io"
	SuperproxyPort = 33335

	DefaultCountry = "us"
)

// Profile is a proxy configuration with the credential answered to its challenges.
type Profile struct {
	Name       string       `json:"name"`
	Config     *ProxyConfig `json:"config"`
	Credential Credential   `json:"-"`
}

// VariantA routes through the superproxy over HTTPS, bypasses localhost, and answers with the plain zone credential.
func VariantA(cred Credential) *Profile {
	return &Profile{
		Name:       "a",
		Config:     NewFixedServersConfig(HTTPSScheme, SuperproxyHost, SuperproxyPort, "localhost"),
		Credential: cred,
	}
}

// VariantB routes through the superproxy over HTTP with an empty bypass entry,
// and answers with the credential re-encoded with a country suffix.
func VariantB(cred Credential, country string) *Profile {
	if country == "" {
		country = DefaultCountry
	}
	return &Profile{
		Name:       "b",
		Config:     NewFixedServersConfig(HTTPScheme, SuperproxyHost, SuperproxyPort, ""),
		Credential: cred.WithCountry(country),
	}
}

// ProfileNames returns the names accepted by LookupProfile.
func ProfileNames() []string {
	return []string{"a", "b"}
}

// LookupProfile returns the named variant.
func LookupProfile(name string, cred Credential, country string) (*Profile, error) {
	switch strings.ToLower(name) {
	case "a":
		return VariantA(cred), nil
	case "b":
		return VariantB(cred, country), nil
	default:
		return nil, fmt.Errorf("unknown profile %q, expected one of %v", name, ProfileNames())
	}
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s %s bypass=%q credential=%s", p.Name, p.Config.ProxyURL(), p.Config.BypassList(), p.Credential)
}

// ProfileOptions select a variant and override parts of its proxy config.
type ProfileOptions struct {
	Name       string
	Credential Credential
	Country    string

	Scheme Scheme
	Host   string
	Port   int
	// Bypass replaces the bypass list of the variant if not nil.
	Bypass []string
}

func DefaultProfileOptions() *ProfileOptions {
	return &ProfileOptions{
		Name:    "a",
		Country: DefaultCountry,
	}
}

// Profile returns the selected variant with the overrides applied.
func (o *ProfileOptions) Profile() (*Profile, error) {
	p, err := LookupProfile(o.Name, o.Credential, o.Country)
	if err != nil {
		return nil, err
	}

	sp := p.Config.SingleProxy()
	if o.Scheme != "" {
		sp.Scheme = o.Scheme
	}
	if o.Host != "" {
		sp.Host = o.Host
	}
	if o.Port != 0 {
		sp.Port = o.Port
	}
	if o.Bypass != nil {
		p.Config.Rules.BypassList = slices.Clone(o.Bypass)
	}

	if err := p.Config.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return p, nil
}
