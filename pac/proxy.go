// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/saucelabs/proxyauth"
)

// Proxies is the FindProxyForURL return value.
// It is a semicolon separated list of "DIRECT" or "<type> <host>:<port>" blocks, the empty string means DIRECT.
//
// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Proxy_servers_and_tunneling/Proxy_Auto-Configuration_PAC_file#return_value_format
type Proxies string

// Mode is the type of a proxy block.
type Mode int

const (
	DIRECT Mode = iota
	PROXY
	HTTP
	HTTPS
	QUIC
	SOCKS
	SOCKS4
	SOCKS5
)

var modeNames = [...]string{"DIRECT", "PROXY", "HTTP", "HTTPS", "QUIC", "SOCKS", "SOCKS4", "SOCKS5"} //nolint:gochecknoglobals // constant

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

func parseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), true
		}
	}
	return DIRECT, false
}

// modeForScheme returns the block type the browser uses for a fixed proxy scheme.
func modeForScheme(s proxyauth.Scheme) Mode {
	switch s {
	case proxyauth.HTTPSScheme:
		return HTTPS
	case proxyauth.QUICScheme:
		return QUIC
	case proxyauth.SOCKS4Scheme:
		return SOCKS4
	case proxyauth.SOCKS5Scheme:
		return SOCKS5
	default:
		return PROXY
	}
}

// Proxy is a single block of the FindProxyForURL return value.
type Proxy struct {
	Mode Mode
	Host string
	Port string
}

func (p Proxy) String() string {
	if p.Mode == DIRECT {
		return DIRECT.String()
	}
	return p.Mode.String() + " " + net.JoinHostPort(p.Host, p.Port)
}

// SingleProxy converts the block to a fixed proxy, it returns nil for DIRECT.
func (p Proxy) SingleProxy() (*proxyauth.SingleProxy, error) {
	var s proxyauth.Scheme
	switch p.Mode {
	case DIRECT:
		return nil, nil //nolint:nilnil // DIRECT has no proxy
	case PROXY, HTTP:
		s = proxyauth.HTTPScheme
	case HTTPS:
		s = proxyauth.HTTPSScheme
	case QUIC:
		s = proxyauth.QUICScheme
	case SOCKS, SOCKS4:
		s = proxyauth.SOCKS4Scheme
	case SOCKS5:
		s = proxyauth.SOCKS5Scheme
	}
	port, err := proxyauth.ParsePort(p.Port)
	if err != nil {
		return nil, err
	}
	return &proxyauth.SingleProxy{Scheme: s, Host: p.Host, Port: port}, nil
}

func (s Proxies) String() string {
	return string(s)
}

// First returns the first block, an empty value yields DIRECT.
func (s Proxies) First() (Proxy, error) {
	spec, _, _ := strings.Cut(string(s), ";")
	p, err := parseProxy(spec)
	if err != nil {
		return Proxy{}, fmt.Errorf("invalid proxy string at pos %d %q: %w", 0, spec, err)
	}
	return p, nil
}

func (s Proxies) All() ([]Proxy, error) {
	if strings.TrimSpace(string(s)) == "" {
		return nil, nil
	}

	spec := strings.Split(string(s), ";")
	res := make([]Proxy, 0, len(spec))
	for i, v := range spec {
		if strings.TrimSpace(v) == "" {
			continue
		}
		p, err := parseProxy(v)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy string at pos %d %q: %w", i, v, err)
		}
		res = append(res, p)
	}
	return res, nil
}

func parseProxy(s string) (Proxy, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "DIRECT") {
		return Proxy{Mode: DIRECT}, nil
	}

	mode, hostport, ok := strings.Cut(s, " ")
	if !ok {
		return Proxy{}, errors.New("missing host:port")
	}
	m, ok := parseMode(mode)
	if !ok {
		return Proxy{}, fmt.Errorf("unknown proxy type %q", mode)
	}
	host, port, err := net.SplitHostPort(strings.TrimSpace(hostport))
	if err != nil {
		return Proxy{}, fmt.Errorf("split host:port: %w", err)
	}

	return Proxy{Mode: m, Host: host, Port: port}, nil
}
