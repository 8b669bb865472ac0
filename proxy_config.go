// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Mode is the proxy settings mode.
type Mode string

const (
	DirectMode       Mode = "direct"
	AutoDetectMode   Mode = "auto_detect"
	PACScriptMode    Mode = "pac_script"
	FixedServersMode Mode = "fixed_servers"
	SystemMode       Mode = "system"
)

func (m Mode) String() string {
	return string(m)
}

func (m Mode) isValid() bool {
	switch m {
	case DirectMode, AutoDetectMode, PACScriptMode, FixedServersMode, SystemMode:
		return true
	default:
		return false
	}
}

// Scheme is the scheme of the single proxy.
type Scheme string

const (
	HTTPScheme   Scheme = "http"
	HTTPSScheme  Scheme = "https"
	QUICScheme   Scheme = "quic"
	SOCKS4Scheme Scheme = "socks4"
	SOCKS5Scheme Scheme = "socks5"
)

var (
	ErrInvalidScheme = errors.New("invalid proxy scheme")
	ErrInvalidPort   = errors.New("invalid proxy port")
)

// Schemes returns all supported proxy schemes.
func Schemes() []Scheme {
	return []Scheme{HTTPScheme, HTTPSScheme, QUICScheme, SOCKS4Scheme, SOCKS5Scheme}
}

func ParseScheme(val string) (Scheme, error) {
	s := Scheme(strings.ToLower(strings.TrimSpace(val)))
	if !slices.Contains(Schemes(), s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScheme, val)
	}
	return s, nil
}

func (s Scheme) String() string {
	return string(s)
}

// DefaultPort returns the port the browser assumes when the proxy port is omitted.
func (s Scheme) DefaultPort() int {
	switch s {
	case HTTPSScheme, QUICScheme:
		return 443
	case SOCKS4Scheme, SOCKS5Scheme:
		return 1080
	default:
		return 80
	}
}

// ParsePort resolves a textual port to an integer.
// Surrounding whitespace is ignored, so "33335" and " 33335" resolve to the same value.
func ParsePort(val string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, val)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidPort, p)
	}
	return p, nil
}

// SingleProxy is the proxy server used for all requests.
type SingleProxy struct {
	Scheme Scheme `json:"scheme"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

func (p *SingleProxy) HostPort() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ProxyRules describe the proxy used in fixed_servers mode.
type ProxyRules struct {
	SingleProxy *SingleProxy `json:"singleProxy,omitempty"`
	BypassList  []string     `json:"bypassList"`
}

// ProxyConfig is the value submitted to the host proxy settings.
// It is built once and must not be mutated after it is submitted, hosts keep their own copy.
type ProxyConfig struct {
	Mode  Mode        `json:"mode"`
	Rules *ProxyRules `json:"rules,omitempty"`
}

// NewFixedServersConfig returns a fixed_servers configuration with a single proxy.
func NewFixedServersConfig(scheme Scheme, host string, port int, bypass ...string) *ProxyConfig {
	return &ProxyConfig{
		Mode: FixedServersMode,
		Rules: &ProxyRules{
			SingleProxy: &SingleProxy{
				Scheme: scheme,
				Host:   host,
				Port:   port,
			},
			BypassList: bypass,
		},
	}
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}

	v := &ProxyConfig{
		Mode: c.Mode,
	}
	if r := c.Rules; r != nil {
		v.Rules = &ProxyRules{
			BypassList: slices.Clone(r.BypassList),
		}
		if sp := r.SingleProxy; sp != nil {
			p := *sp
			v.Rules.SingleProxy = &p
		}
	}
	return v
}

// SingleProxy returns the single proxy or nil if the config is not in fixed_servers mode.
func (c *ProxyConfig) SingleProxy() *SingleProxy {
	if c == nil || c.Mode != FixedServersMode || c.Rules == nil {
		return nil
	}
	return c.Rules.SingleProxy
}

// BypassList returns the bypass rules or nil if none are set.
func (c *ProxyConfig) BypassList() []string {
	if c == nil || c.Rules == nil {
		return nil
	}
	return c.Rules.BypassList
}

// ProxyURL returns the single proxy as scheme://host:port.
func (c *ProxyConfig) ProxyURL() *url.URL {
	p := c.SingleProxy()
	if p == nil {
		return nil
	}
	return &url.URL{
		Scheme: p.Scheme.String(),
		Host:   p.HostPort(),
	}
}

func (c *ProxyConfig) Validate() error {
	if c == nil {
		return errors.New("proxy config is nil")
	}
	if !c.Mode.isValid() {
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}
	if c.Mode != FixedServersMode {
		return nil
	}

	p := c.SingleProxy()
	if p == nil {
		return errors.New("fixed_servers mode requires rules.singleProxy")
	}
	if _, err := ParseScheme(p.Scheme.String()); err != nil {
		return err
	}
	if p.Host == "" {
		return errors.New("proxy host is empty")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("%w: %d out of range", ErrInvalidPort, p.Port)
	}
	if _, err := ParseBypassList(c.BypassList()); err != nil {
		return fmt.Errorf("bypass list: %w", err)
	}

	return nil
}
