// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"errors"
	"testing"
)

func TestParseCredential(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Credential
		wantErr bool
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only username",
			input:   "username",
			wantErr: true,
		},
		{
			name:    "missing username",
			input:   ":password",
			wantErr: true,
		},
		{
			name:    "missing password",
			input:   "username:",
			wantErr: true,
		},
		{
			name:  "ok",
			input: "username:password",
			want:  Credential{Username: "username", Password: "password"},
		},
		{
			name:  "password with colon",
			input: "username:pass:word",
			want:  Credential{Username: "username", Password: "pass:word"},
		},
		{
			name:  "url encoded",
			input: "user%40mail:p%3aw",
			want:  Credential{Username: "user@mail", Password: "p:w"},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCredential(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCredential() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if !errors.Is(err, ErrMissingCredential) {
					t.Errorf("expected ErrMissingCredential, got %v", err)
				}
				return
			}
			if got != tc.want {
				t.Errorf("ParseCredential() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCredentialWithCountry(t *testing.T) {
	c := Credential{Username: "brd-customer-hl_1-zone-z", Password: "p"}

	us := c.WithCountry("us")
	if us.Username != "brd-customer-hl_1-zone-z-country-us" {
		t.Fatalf("unexpected username %q", us.Username)
	}
	if us.Country() != "us" {
		t.Fatalf("Country() = %q", us.Country())
	}
	if de := us.WithCountry("de"); de.Username != "brd-customer-hl_1-zone-z-country-de" {
		t.Fatalf("suffix not replaced: %q", de.Username)
	}
	if same := c.WithCountry(""); same != c {
		t.Fatalf("empty country changed credential: %v", same)
	}
}

func TestCredentialCountryInZoneName(t *testing.T) {
	tests := []struct {
		username string
		country  string
		want     string
	}{
		{"brd-customer-x-zone-country-club", "", "brd-customer-x-zone-country-club-country-us"},
		{"brd-customer-x-zone-country-club-country-de", "de", "brd-customer-x-zone-country-club-country-us"},
		{"brd-customer-x-country-", "", "brd-customer-x-country--country-us"},
		{"brd-customer-x-country-usa", "", "brd-customer-x-country-usa-country-us"},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.username, func(t *testing.T) {
			c := Credential{Username: tc.username, Password: "p"}
			if got := c.Country(); got != tc.country {
				t.Errorf("Country() = %q, want %q", got, tc.country)
			}
			if got := c.WithCountry("us").Username; got != tc.want {
				t.Errorf("WithCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCredentialRedacted(t *testing.T) {
	c := Credential{Username: "u", Password: "secret"}
	if s := c.String(); s != "u:xxxxx" {
		t.Fatalf("String() = %q", s)
	}
	if h := c.BasicAuth(); h != "Basic dTpzZWNyZXQ=" {
		t.Fatalf("BasicAuth() = %q", h)
	}
}

func TestStaticCredentialsDoesNotLeakMutation(t *testing.T) {
	l := StaticCredentials(Credential{Username: "u", Password: "p"})
	r := l(AuthChallenge{})
	r.AuthCredentials.Username = "changed"

	if got := l(AuthChallenge{}).AuthCredentials.Username; got != "u" {
		t.Fatalf("listener state mutated through response: %q", got)
	}
}
