// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/dop251/goja"
	"golang.org/x/exp/utf8string"
)

type ProxyResolverConfig struct {
	Script    string
	AlertSink io.Writer

	testingLookupIP    func(ctx context.Context, network, host string) ([]net.IP, error)
	testingMyIPAddress []net.IP
}

func (c *ProxyResolverConfig) Validate() error {
	if c.Script == "" {
		return errors.New("PAC script is empty")
	}
	return nil
}

// ProxyResolver evaluates FindProxyForURL from a PAC script.
// It is not safe for concurrent use, see ProxyResolverPool.
type ProxyResolver struct {
	config   ProxyResolverConfig
	vm       *goja.Runtime
	fn       goja.Callable
	resolver *net.Resolver
}

func NewProxyResolver(cfg *ProxyResolverConfig, r *net.Resolver) (*ProxyResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = net.DefaultResolver
	}

	pr := &ProxyResolver{
		config:   *cfg,
		vm:       goja.New(),
		resolver: r,
	}

	for _, v := range []struct {
		name string
		fn   func(call goja.FunctionCall) goja.Value
	}{
		{"dnsResolve", pr.dnsResolve},
		{"myIpAddress", pr.myIPAddress},
		{"alert", pr.alert},
	} {
		if err := pr.vm.Set(v.name, v.fn); err != nil {
			return nil, fmt.Errorf("set helper function %s: %w", v.name, err)
		}
	}
	if _, err := pr.vm.RunString(pacUtilsScript); err != nil {
		return nil, fmt.Errorf("PAC helpers: %w", err)
	}

	if _, err := pr.vm.RunString(pr.config.Script); err != nil {
		return nil, fmt.Errorf("PAC script: %w", err)
	}
	fn, ok := goja.AssertFunction(pr.vm.Get("FindProxyForURL"))
	if !ok {
		return nil, errors.New("PAC script: missing required function FindProxyForURL")
	}
	pr.fn = fn

	return pr, nil
}

// FindProxyForURL calls FindProxyForURL in the PAC script.
// The hostname is optional, if empty it is extracted from the URL.
func (pr *ProxyResolver) FindProxyForURL(u *url.URL, hostname string) (Proxies, error) {
	if hostname == "" {
		hostname = u.Hostname()
	}

	v, err := pr.fn(goja.Undefined(), pr.vm.ToValue(u.String()), pr.vm.ToValue(hostname))
	if err != nil {
		return "", fmt.Errorf("PAC script: %w", err)
	}

	s, ok := asString(v)
	if !ok {
		return "", fmt.Errorf("PAC script: unexpected return value %v", v)
	}
	if !utf8string.NewString(s).IsASCII() {
		return "", fmt.Errorf("PAC script: non-ASCII characters in the return value %q", s)
	}

	return Proxies(s), nil
}

// dnsResolve resolves host to an IPv4 address in dot-separated format, or null.
func (pr *ProxyResolver) dnsResolve(call goja.FunctionCall) goja.Value {
	host, ok := asString(call.Argument(0))
	if !ok {
		return goja.Null()
	}

	lookupIP := pr.config.testingLookupIP
	if lookupIP == nil {
		lookupIP = pr.resolver.LookupIP
	}
	ips, err := lookupIP(context.Background(), "ip4", host)
	if err != nil || len(ips) == 0 {
		return goja.Null()
	}

	return pr.vm.ToValue(ips[0].String())
}

// myIPAddress returns the first global unicast IPv4 address of an up interface, or 127.0.0.1.
func (pr *ProxyResolver) myIPAddress(_ goja.FunctionCall) goja.Value {
	ips := pr.config.testingMyIPAddress
	if ips == nil {
		ips = localIPv4()
	}
	if len(ips) == 0 {
		return pr.vm.ToValue("127.0.0.1")
	}
	return pr.vm.ToValue(ips[0].String())
}

func localIPv4() (ips []net.IP) {
	ifces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	for i := range ifces {
		if ifces[i].Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := ifces[i].Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ip, ok := addr.(*net.IPNet); ok && ip.IP.IsGlobalUnicast() && ip.IP.To4() != nil {
				ips = append(ips, ip.IP)
			}
		}
	}
	return
}

func (pr *ProxyResolver) alert(call goja.FunctionCall) goja.Value {
	if pr.config.AlertSink != nil {
		fmt.Fprintln(pr.config.AlertSink, "alert:", call.Argument(0).String())
	}
	return goja.Undefined()
}
