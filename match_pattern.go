// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// allURLsSchemes are the schemes matched by <all_urls> and by the "*" scheme respectively.
var (
	allURLsSchemes  = []string{"http", "https", "ws", "wss", "ftp", "file"}
	anySchemeValues = []string{"http", "https", "ws", "wss"}
)

// MatchPattern is a parsed URL match pattern such as "*://*.example.com/*".
type MatchPattern struct {
	raw    string
	all    bool
	scheme string
	host   string
	sub    bool
	port   string
	path   string
}

func ParseMatchPattern(val string) (*MatchPattern, error) {
	if val == AllURLs {
		return &MatchPattern{raw: val, all: true}, nil
	}

	scheme, rest, ok := strings.Cut(val, "://")
	if !ok {
		return nil, fmt.Errorf("match pattern %q: missing scheme separator", val)
	}
	if scheme != "*" && !slices.Contains(allURLsSchemes, scheme) {
		return nil, fmt.Errorf("match pattern %q: invalid scheme %q", val, scheme)
	}

	hostport, path, ok := strings.Cut(rest, "/")
	if !ok {
		return nil, fmt.Errorf("match pattern %q: missing path", val)
	}

	mp := &MatchPattern{
		raw:    val,
		scheme: scheme,
		path:   "/" + path,
	}

	if scheme == "file" {
		if hostport != "" {
			return nil, fmt.Errorf("match pattern %q: file scheme must not have a host", val)
		}
		return mp, nil
	}
	if hostport == "" {
		return nil, fmt.Errorf("match pattern %q: empty host", val)
	}

	host, port := hostport, ""
	if i := strings.LastIndexByte(hostport, ':'); i >= 0 && !strings.HasSuffix(hostport, "]") {
		host, port = hostport[:i], hostport[i+1:]
		if port != "*" {
			if _, err := ParsePort(port); err != nil {
				return nil, fmt.Errorf("match pattern %q: %w", val, err)
			}
		}
	}
	// url.URL.Hostname strips the brackets of IPv6 literals.
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
		if host == "" {
			return nil, fmt.Errorf("match pattern %q: empty host", val)
		}
	}

	switch {
	case host == "*":
		mp.host = "*"
	case strings.HasPrefix(host, "*."):
		mp.sub = true
		mp.host = strings.ToLower(host[2:])
	case strings.Contains(host, "*"):
		return nil, errors.New("match pattern " + val + ": '*' in host must be followed by '.' or be the only character")
	default:
		mp.host = strings.ToLower(host)
	}
	if port != "*" {
		mp.port = port
	}

	return mp, nil
}

func (mp *MatchPattern) String() string {
	return mp.raw
}

func (mp *MatchPattern) Match(u *url.URL) bool {
	if u == nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if mp.all {
		return slices.Contains(allURLsSchemes, scheme)
	}

	switch mp.scheme {
	case "*":
		if !slices.Contains(anySchemeValues, scheme) {
			return false
		}
	default:
		if mp.scheme != scheme {
			return false
		}
	}

	if mp.scheme != "file" && !mp.matchHost(strings.ToLower(u.Hostname())) {
		return false
	}
	if mp.port != "" && mp.port != u.Port() {
		return false
	}

	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return globMatch(mp.path, p)
}

func (mp *MatchPattern) matchHost(host string) bool {
	if mp.host == "*" {
		return true
	}
	if host == mp.host {
		return true
	}
	return mp.sub && strings.HasSuffix(host, "."+mp.host)
}

// compileFilter parses the filter URL patterns, an empty filter matches nothing.
func compileFilter(f RequestFilter) ([]*MatchPattern, error) {
	res := make([]*MatchPattern, 0, len(f.URLs))
	for _, s := range f.URLs {
		mp, err := ParseMatchPattern(s)
		if err != nil {
			return nil, err
		}
		res = append(res, mp)
	}
	return res, nil
}

func matchAny(patterns []*MatchPattern, u *url.URL) bool {
	for _, mp := range patterns {
		if mp.Match(u) {
			return true
		}
	}
	return false
}
