// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"testing"
)

func TestBypassRules(t *testing.T) {
	type req struct {
		scheme, host, port string
	}

	tests := []struct {
		name   string
		list   []string
		bypass []req
		proxy  []req
	}{
		{
			name: "localhost",
			list: []string{"localhost"},
			bypass: []req{
				{"http", "localhost", "8080"},
				{"https", "LOCALHOST", ""},
				{"http", "127.0.0.1", ""},
				{"http", "::1", ""},
			},
			proxy: []req{
				{"https", "www.walmart.com", ""},
				{"http", "10.0.0.1", ""},
			},
		},
		{
			name: "empty entry",
			list: []string{""},
			bypass: []req{
				{"http", "localhost", ""},
			},
			proxy: []req{
				{"http", "example.com", ""},
				{"http", "intranet", ""},
			},
		},
		{
			name: "subtract loopback",
			list: []string{"<-loopback>"},
			proxy: []req{
				{"http", "localhost", ""},
				{"http", "127.0.0.1", ""},
			},
		},
		{
			name: "wildcard domain",
			list: []string{"*.example.com", ".google.com"},
			bypass: []req{
				{"http", "example.com", ""},
				{"https", "a.example.com", ""},
				{"https", "a.b.google.com", ""},
				{"https", "google.com", ""},
			},
			proxy: []req{
				{"http", "badexample.com", ""},
			},
		},
		{
			name: "scheme and port",
			list: []string{"https://secure.test", "plain.test:8080"},
			bypass: []req{
				{"https", "secure.test", ""},
				{"http", "plain.test", "8080"},
			},
			proxy: []req{
				{"http", "secure.test", ""},
				{"http", "plain.test", "80"},
			},
		},
		{
			name: "cidr and ip",
			list: []string{"192.168.0.0/16", "[2001:db8::1]", "10.1.2.3"},
			bypass: []req{
				{"http", "192.168.10.1", ""},
				{"http", "2001:db8::1", ""},
				{"http", "10.1.2.3", "443"},
			},
			proxy: []req{
				{"http", "192.169.0.1", ""},
				{"http", "10.1.2.4", ""},
			},
		},
		{
			name: "local",
			list: []string{"<local>"},
			bypass: []req{
				{"http", "intranet", ""},
			},
			proxy: []req{
				{"http", "intranet.corp", ""},
				{"http", "8.8.8.8", ""},
			},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			br, err := ParseBypassList(tc.list)
			if err != nil {
				t.Fatal(err)
			}
			for _, r := range tc.bypass {
				if !br.Match(r.scheme, r.host, r.port) {
					t.Errorf("expected bypass for %+v", r)
				}
			}
			for _, r := range tc.proxy {
				if br.Match(r.scheme, r.host, r.port) {
					t.Errorf("expected proxy for %+v", r)
				}
			}
		})
	}
}

func TestBypassRulesErrors(t *testing.T) {
	for _, list := range [][]string{
		{"10.0.0.0/33"},
		{"http://10.0.0.0/8"},
		{"example.com:99999"},
		{":80"},
	} {
		if _, err := ParseBypassList(list); err == nil {
			t.Errorf("expected error for %q", list)
		}
	}
}

func TestBypassRulesMatchHostPort(t *testing.T) {
	br, err := ParseBypassList([]string{"localhost"})
	if err != nil {
		t.Fatal(err)
	}
	if !br.MatchHostPort("https", "localhost:443") {
		t.Error("expected bypass")
	}
	if br.MatchHostPort("https", "example.com:443") {
		t.Error("expected proxy")
	}
}
