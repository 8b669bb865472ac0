// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrMissingCredential = errors.New("missing credential")

// Credential is a username and password pair supplied to an authentication challenge.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseCredential parses "username:password".
// Both parts are URL decoded, this allows passing special characters such as @ as %40 or a colon as %3a.
func ParseCredential(val string) (Credential, error) {
	u, p, ok := strings.Cut(val, ":")
	if !ok {
		return Credential{}, fmt.Errorf("%w: expected username:password", ErrMissingCredential)
	}

	var err error
	if u, err = url.QueryUnescape(u); err != nil {
		return Credential{}, fmt.Errorf("username: %w", err)
	}
	if p, err = url.QueryUnescape(p); err != nil {
		return Credential{}, fmt.Errorf("password: %w", err)
	}

	c := Credential{Username: u, Password: p}
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}
	return c, nil
}

func (c Credential) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: username is empty", ErrMissingCredential)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: password is empty", ErrMissingCredential)
	}
	return nil
}

func (c Credential) IsZero() bool {
	return c == Credential{}
}

// WithCountry returns a copy of the credential with the username suffixed with -country-<code>.
// If the username already carries a country suffix it is replaced.
func (c Credential) WithCountry(code string) Credential {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return c
	}

	u, _ := splitCountry(c.Username)
	c.Username = u + countryInfix + code
	return c
}

const countryInfix = "-country-"

// Country returns the country code encoded in the username, if any.
func (c Credential) Country() string {
	_, code := splitCountry(c.Username)
	return code
}

// splitCountry splits a trailing -country-<cc> suffix off the username.
// Only a two letter code counts as a suffix, "-country-" elsewhere in the zone name is kept.
func splitCountry(u string) (base, code string) {
	i := strings.LastIndex(u, countryInfix)
	if i < 0 {
		return u, ""
	}
	code = u[i+len(countryInfix):]
	if !isCountryCode(code) {
		return u, ""
	}
	return u[:i], code
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// Userinfo returns the credential as URL user info.
func (c Credential) Userinfo() *url.Userinfo {
	return url.UserPassword(c.Username, c.Password)
}

// BasicAuth returns the value of a Basic Authorization or Proxy-Authorization header.
func (c Credential) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// String returns the credential with the password redacted.
func (c Credential) String() string {
	if c.Password == "" {
		return c.Username
	}
	return c.Username + ":xxxxx"
}
