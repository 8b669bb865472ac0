// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

const (
	localBypassRule        = "<local>"
	subtractLoopbackBypass = "<-loopback>"
)

type bypassRule interface {
	match(scheme, host string, port string) bool
	entry() BypassEntry
	String() string
}

// BypassKind is the kind of a parsed bypass rule.
type BypassKind int

const (
	HostBypass BypassKind = iota
	CIDRBypass
	LocalBypass
)

// BypassEntry describes a parsed bypass rule so that it can be rendered for another host.
type BypassEntry struct {
	Kind BypassKind
	// Scheme and Port are empty when the rule applies to any.
	Scheme string
	Port   string
	// Host is a lower case host, IP literal or a pattern with "*" wildcards.
	Host   string
	Prefix netip.Prefix
}

// BypassRules decides which requests go directly instead of through the proxy.
// Loopback and link-local destinations are bypassed implicitly unless "<-loopback>" is present.
type BypassRules struct {
	rules            []bypassRule
	implicitLoopback bool
}

// ParseBypassList parses the bypass list entries.
// Empty entries are ignored, a list of only empty entries bypasses nothing but the implicit loopback rules.
func ParseBypassList(list []string) (*BypassRules, error) {
	br := &BypassRules{
		implicitLoopback: true,
	}
	for i, s := range list {
		s = strings.TrimSpace(s)
		switch s {
		case "":
			continue
		case localBypassRule:
			br.rules = append(br.rules, localRule{})
			continue
		case subtractLoopbackBypass:
			br.implicitLoopback = false
			continue
		}

		r, err := parseBypassRule(s)
		if err != nil {
			return nil, fmt.Errorf("%w at pos %d", err, i)
		}
		br.rules = append(br.rules, r)
	}

	return br, nil
}

// Len returns the number of explicit rules.
func (br *BypassRules) Len() int {
	if br == nil {
		return 0
	}
	return len(br.rules)
}

// Match reports whether a request to scheme://host:port should bypass the proxy.
// The port may be empty, in which case the scheme default is assumed.
func (br *BypassRules) Match(scheme, host, port string) bool {
	if br == nil {
		return false
	}

	scheme = strings.ToLower(scheme)
	host = normalizeHost(host)
	if port == "" {
		port = defaultPortForScheme(scheme)
	}

	if br.implicitLoopback && isImplicitBypass(host) {
		return true
	}
	for _, r := range br.rules {
		if r.match(scheme, host, port) {
			return true
		}
	}
	return false
}

// Entries returns the explicit rules in list order.
func (br *BypassRules) Entries() []BypassEntry {
	if br == nil {
		return nil
	}
	res := make([]BypassEntry, len(br.rules))
	for i, r := range br.rules {
		res[i] = r.entry()
	}
	return res
}

// ImplicitLoopback reports whether loopback and link-local destinations are bypassed.
func (br *BypassRules) ImplicitLoopback() bool {
	return br != nil && br.implicitLoopback
}

// MatchHostPort is like Match for a "host:port" address as seen in a CONNECT request.
func (br *BypassRules) MatchHostPort(scheme, hostport string) bool {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = hostport, ""
	}
	return br.Match(scheme, host, port)
}

func (br *BypassRules) String() string {
	var sb strings.Builder
	for _, r := range br.rules {
		if sb.Len() > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(r.String())
	}
	if !br.implicitLoopback {
		if sb.Len() > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(subtractLoopbackBypass)
	}
	return sb.String()
}

func parseBypassRule(s string) (bypassRule, error) {
	raw := s

	var scheme string
	if before, after, ok := strings.Cut(s, "://"); ok {
		scheme, s = strings.ToLower(before), after
	}

	if strings.Contains(s, "/") {
		if scheme != "" {
			return nil, fmt.Errorf("bypass rule %q: CIDR rules must not have a scheme", raw)
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("bypass rule %q: %w", raw, err)
		}
		return cidrRule{raw: raw, prefix: p.Masked()}, nil
	}

	host, port := splitHostPortPattern(s)
	if port != "" {
		if _, err := ParsePort(port); err != nil {
			return nil, fmt.Errorf("bypass rule %q: %w", raw, err)
		}
	}
	if host == "" {
		return nil, fmt.Errorf("bypass rule %q: empty host", raw)
	}

	if ip, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return hostRule{raw: raw, scheme: scheme, pattern: ip.Unmap().String(), port: port}, nil
	}

	host = strings.ToLower(host)
	if strings.HasPrefix(host, ".") {
		host = "*" + host
	}
	if !strings.Contains(host, "*") {
		host = normalizeHost(host)
	}

	return hostRule{raw: raw, scheme: scheme, pattern: host, port: port}, nil
}

// splitHostPortPattern splits an optional port from a host pattern that may be a bracketed IPv6 literal.
func splitHostPortPattern(s string) (host, port string) {
	if strings.HasPrefix(s, "[") {
		if i := strings.Index(s, "]"); i > 0 {
			host, rest := s[1:i], s[i+1:]
			return host, strings.TrimPrefix(rest, ":")
		}
	}
	if strings.Count(s, ":") == 1 {
		h, p, _ := strings.Cut(s, ":")
		return h, p
	}
	return s, ""
}

type hostRule struct {
	raw     string
	scheme  string
	pattern string
	port    string
}

func (r hostRule) match(scheme, host, port string) bool {
	if r.scheme != "" && r.scheme != scheme {
		return false
	}
	if r.port != "" && r.port != port {
		return false
	}
	if globMatch(r.pattern, host) {
		return true
	}
	// "*.example.com" also covers "example.com".
	if strings.HasPrefix(r.pattern, "*.") {
		return host == r.pattern[2:]
	}
	return false
}

func (r hostRule) entry() BypassEntry {
	return BypassEntry{Kind: HostBypass, Scheme: r.scheme, Port: r.port, Host: r.pattern}
}

func (r hostRule) String() string {
	return r.raw
}

type cidrRule struct {
	raw    string
	prefix netip.Prefix
}

func (r cidrRule) match(_, host, _ string) bool {
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return r.prefix.Contains(ip.Unmap())
}

func (r cidrRule) entry() BypassEntry {
	return BypassEntry{Kind: CIDRBypass, Prefix: r.prefix}
}

func (r cidrRule) String() string {
	return r.raw
}

// localRule matches plain hostnames, i.e. hosts without a dot that are not IP literals.
type localRule struct{}

func (localRule) match(_, host, _ string) bool {
	if _, err := netip.ParseAddr(host); err == nil {
		return false
	}
	return !strings.Contains(host, ".")
}

func (localRule) entry() BypassEntry {
	return BypassEntry{Kind: LocalBypass}
}

func (localRule) String() string {
	return localBypassRule
}

var linkLocalPrefixes = []netip.Prefix{ //nolint:gochecknoglobals // constant
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("fe80::/10"),
}

func isImplicitBypass(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	if ip.IsLoopback() {
		return true
	}
	for _, p := range linkLocalPrefixes {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if ip, err := netip.ParseAddr(host); err == nil {
		return ip.Unmap().String()
	}
	if h, err := idna.Lookup.ToASCII(host); err == nil {
		return h
	}
	return strings.ToLower(host)
}

func defaultPortForScheme(scheme string) string {
	switch scheme {
	case "https", "wss":
		return "443"
	case "ftp":
		return "21"
	default:
		return "80"
	}
}
