// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "33335", want: 33335},
		{input: " 33335 ", want: 33335},
		{input: "1", want: 1},
		{input: "65535", want: 65535},
		{input: "0", wantErr: true},
		{input: "65536", wantErr: true},
		{input: "", wantErr: true},
		{input: "port", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParsePort(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPort) {
				t.Errorf("ParsePort(%q) error = %v, want ErrInvalidPort", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePort(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParsePort(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseScheme(t *testing.T) {
	for _, s := range Schemes() {
		got, err := ParseScheme(s.String())
		if err != nil || got != s {
			t.Errorf("ParseScheme(%q) = %q, %v", s, got, err)
		}
	}
	if got, err := ParseScheme("HTTPS"); err != nil || got != HTTPSScheme {
		t.Errorf("ParseScheme is case sensitive: %q, %v", got, err)
	}
	if _, err := ParseScheme("ftp"); !errors.Is(err, ErrInvalidScheme) {
		t.Errorf("expected ErrInvalidScheme, got %v", err)
	}
}

func TestProxyConfigJSON(t *testing.T) {
	in := `{"mode":"fixed_servers","rules":{"singleProxy":{"scheme":"socks5","host":"10.0.0.1","port":1080},"bypassList":["<local>","*.corp"]}}`

	var c ProxyConfig
	if err := json.Unmarshal([]byte(in), &c); err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := c.ProxyURL().String(); got != "socks5://10.0.0.1:1080" {
		t.Errorf("ProxyURL() = %q", got)
	}

	out, err := json.Marshal(&c)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, string(out)); diff != "" {
		t.Errorf("unexpected JSON (-want +got):\n%s", diff)
	}
}

func TestProxyConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ProxyConfig
	}{
		{"nil", nil},
		{"unknown mode", &ProxyConfig{Mode: "manual"}},
		{"missing rules", &ProxyConfig{Mode: FixedServersMode}},
		{"bad scheme", NewFixedServersConfig("ftp", "h", 1)},
		{"empty host", NewFixedServersConfig(HTTPScheme, "", 1)},
		{"bad port", NewFixedServersConfig(HTTPScheme, "h", 0)},
		{"bad bypass", NewFixedServersConfig(HTTPScheme, "h", 1, "10.0.0.0/99")},
	}
	for _, tc := range tests {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if err := (&ProxyConfig{Mode: DirectMode}).Validate(); err != nil {
		t.Errorf("direct mode: %v", err)
	}
}

func TestProxyConfigClone(t *testing.T) {
	c := NewFixedServersConfig(HTTPSScheme, "h", 1, "a")
	v := c.Clone()
	v.Rules.SingleProxy.Host = "other"
	v.Rules.BypassList[0] = "b"

	if c.Rules.SingleProxy.Host != "h" || c.Rules.BypassList[0] != "a" {
		t.Fatalf("clone shares state: %+v", c.Rules)
	}
}
