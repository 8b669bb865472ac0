// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVariants(t *testing.T) {
	cred := Credential{Username: "brd-customer-x-zone-y", Password: "p"}

	tests := []struct {
		name     string
		profile  *Profile
		scheme   Scheme
		bypass   []string
		username string
	}{
		{
			name:     "a",
			profile:  VariantA(cred),
			scheme:   HTTPSScheme,
			bypass:   []string{"localhost"},
			username: "brd-customer-x-zone-y",
		},
		{
			name:     "b",
			profile:  VariantB(cred, ""),
			scheme:   HTTPScheme,
			bypass:   []string{""},
			username: "brd-customer-x-zone-y-country-us",
		},
		{
			name:     "b with country",
			profile:  VariantB(cred, "DE"),
			scheme:   HTTPScheme,
			bypass:   []string{""},
			username: "brd-customer-x-zone-y-country-de",
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			c := tc.profile.Config
			if c.Mode != FixedServersMode {
				t.Errorf("mode = %q", c.Mode)
			}
			sp := c.SingleProxy()
			if sp.Host != SuperproxyHost {
				t.Errorf("host = %q", sp.Host)
			}
			if sp.Port != 33335 {
				t.Errorf("port = %d", sp.Port)
			}
			if sp.Scheme != tc.scheme {
				t.Errorf("scheme = %q, want %q", sp.Scheme, tc.scheme)
			}
			if diff := cmp.Diff(tc.bypass, c.BypassList()); diff != "" {
				t.Errorf("unexpected bypass list (-want +got):\n%s", diff)
			}
			if tc.profile.Credential.Username != tc.username {
				t.Errorf("username = %q, want %q", tc.profile.Credential.Username, tc.username)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestLookupProfile(t *testing.T) {
	cred := Credential{Username: "u", Password: "p"}
	for _, name := range ProfileNames() {
		p, err := LookupProfile(name, cred, "")
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != name {
			t.Errorf("got profile %q, want %q", p.Name, name)
		}
	}
	if _, err := LookupProfile("c", cred, ""); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestProfileOptions(t *testing.T) {
	cred := Credential{Username: "brd-customer-c-zone-z", Password: "p"}

	tests := []struct {
		name string
		opts ProfileOptions
		want *ProxyConfig
		user string
	}{
		{
			name: "defaults",
			opts: *DefaultProfileOptions(),
			want: NewFixedServersConfig(HTTPSScheme, SuperproxyHost, SuperproxyPort, "localhost"),
			user: cred.Username,
		},
		{
			name: "b with country",
			opts: ProfileOptions{Name: "B", Country: "de"},
			want: NewFixedServersConfig(HTTPScheme, SuperproxyHost, SuperproxyPort, ""),
			user: cred.Username + "-country-de",
		},
		{
			name: "overrides",
			opts: ProfileOptions{Name: "a", Scheme: SOCKS5Scheme, Host: "proxy.local", Port: 1080, Bypass: []string{"*.local"}},
			want: NewFixedServersConfig(SOCKS5Scheme, "proxy.local", 1080, "*.local"),
			user: cred.Username,
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.Credential = cred
			p, err := tc.opts.Profile()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want.BypassList(), p.Config.BypassList()); diff != "" {
				t.Fatalf("unexpected bypass list (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.want.SingleProxy(), p.Config.SingleProxy()); diff != "" {
				t.Fatalf("unexpected proxy (-want +got):\n%s", diff)
			}
			if p.Credential.Username != tc.user {
				t.Errorf("username = %q, want %q", p.Credential.Username, tc.user)
			}
		})
	}

	o := ProfileOptions{Name: "a", Port: 70000}
	if _, err := o.Profile(); !errors.Is(err, ErrInvalidPort) {
		t.Errorf("expected ErrInvalidPort, got %v", err)
	}
}
