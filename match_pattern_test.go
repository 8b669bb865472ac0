// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"net/url"
	"testing"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		noMatch []string
	}{
		{
			pattern: "<all_urls>",
			match:   []string{"http://a.com/", "https://b.com/x?y=1", "wss://c.com/", "file:///etc/hosts"},
			noMatch: []string{"chrome://settings/", "data:text/plain,hi"},
		},
		{
			pattern: "*://*/*",
			match:   []string{"http://a.com/", "https://b.com/path"},
			noMatch: []string{"ftp://a.com/", "file:///tmp"},
		},
		{
			pattern: "https://*.walmart.com/ip/*",
			match:   []string{"https://www.walmart.com/ip/1453355684", "https://walmart.com/ip/"},
			noMatch: []string{"http://www.walmart.com/ip/1", "https://www.walmart.com/search"},
		},
		{
			pattern: "http://localhost:8080/*",
			match:   []string{"http://localhost:8080/x"},
			noMatch: []string{"http://localhost:8081/x", "http://localhost/x"},
		},
		{
			pattern: "*://[::1]/*",
			match:   []string{"http://[::1]/x", "https://[::1]:8443/"},
			noMatch: []string{"http://[::2]/x", "http://localhost/x"},
		},
		{
			pattern: "*://[::1]:8080/*",
			match:   []string{"http://[::1]:8080/x"},
			noMatch: []string{"http://[::1]/x", "http://[::1]:8081/x"},
		},
		{
			pattern: "http://[2001:DB8::1]/*",
			match:   []string{"http://[2001:db8::1]/"},
		},
		{
			pattern: "file:///tmp/*",
			match:   []string{"file:///tmp/a.txt"},
			noMatch: []string{"file:///etc/hosts"},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.pattern, func(t *testing.T) {
			mp, err := ParseMatchPattern(tc.pattern)
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range tc.match {
				if !mp.Match(mustParseURL(t, s)) {
					t.Errorf("expected match for %q", s)
				}
			}
			for _, s := range tc.noMatch {
				if mp.Match(mustParseURL(t, s)) {
					t.Errorf("unexpected match for %q", s)
				}
			}
		})
	}
}

func TestMatchPatternErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"example.com",
		"gopher://a.com/*",
		"http://a.com",
		"http://a*.com/*",
		"file://host/x",
		"http:///x",
	} {
		if _, err := ParseMatchPattern(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
