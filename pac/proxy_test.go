// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/saucelabs/proxyauth"
)

func TestProxies(t *testing.T) {
	tests := []struct {
		input string
		want  []Proxy
	}{
		{"", nil},
		{"DIRECT", []Proxy{{Mode: DIRECT}}},
		{"HTTPS brd.superproxy.io:33335", []Proxy{
			{Mode: HTTPS, Host: "brd.superproxy.io", Port: "33335"},
		}},
		{"PROXY brd.superproxy.io:33335; DIRECT", []Proxy{
			{Mode: PROXY, Host: "brd.superproxy.io", Port: "33335"},
			{Mode: DIRECT},
		}},
		{"PROXY w3proxy.example.com:8080; SOCKS5 socks:1080;", []Proxy{
			{Mode: PROXY, Host: "w3proxy.example.com", Port: "8080"},
			{Mode: SOCKS5, Host: "socks", Port: "1080"},
		}},
		{"QUIC [2001:db8::1]:443", []Proxy{
			{Mode: QUIC, Host: "2001:db8::1", Port: "443"},
		}},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.input, func(t *testing.T) {
			all, err := Proxies(tc.input).All()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, all); diff != "" {
				t.Errorf("(-want +all)\n%s", diff)
			}
			if len(all) > 0 {
				first, err := Proxies(tc.input).First()
				if err != nil {
					t.Fatal(err)
				}
				if diff := cmp.Diff(tc.want[0], first); diff != "" {
					t.Errorf("(-want +first)\n%s", diff)
				}
			}
		})
	}
}

func TestProxiesErrors(t *testing.T) {
	for _, input := range []string{
		"PROXY",
		"PROXY host",
		"FTP host:21",
	} {
		if _, err := Proxies(input).All(); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

func TestProxySingleProxy(t *testing.T) {
	tests := []struct {
		proxy Proxy
		want  *proxyauth.SingleProxy
	}{
		{Proxy{Mode: DIRECT}, nil},
		{Proxy{Mode: PROXY, Host: "h", Port: "80"}, &proxyauth.SingleProxy{Scheme: proxyauth.HTTPScheme, Host: "h", Port: 80}},
		{Proxy{Mode: HTTPS, Host: "h", Port: "33335"}, &proxyauth.SingleProxy{Scheme: proxyauth.HTTPSScheme, Host: "h", Port: 33335}},
		{Proxy{Mode: SOCKS, Host: "h", Port: "1080"}, &proxyauth.SingleProxy{Scheme: proxyauth.SOCKS4Scheme, Host: "h", Port: 1080}},
	}

	for _, tc := range tests {
		got, err := tc.proxy.SingleProxy()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s: unexpected result (-want +got):\n%s", tc.proxy, diff)
		}
	}

	if _, err := (Proxy{Mode: PROXY, Host: "h", Port: "0"}).SingleProxy(); err == nil {
		t.Error("expected invalid port error")
	}
}
