// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dialvia

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/proxy"
)

// SOCKS5ProxyDialer dials through a SOCKS5 proxy.
// Browsers do not authenticate to SOCKS proxies, user info in the proxy URL is used if present.
type SOCKS5ProxyDialer struct {
	dialer proxy.Dialer
}

func SOCKS5Proxy(dial ContextDialerFunc, proxyURL *url.URL) (*SOCKS5ProxyDialer, error) {
	if dial == nil {
		panic("dial is required")
	}
	if proxyURL == nil || proxyURL.Scheme != "socks5" {
		panic("proxy URL scheme must be socks5")
	}

	var auth *proxy.Auth
	if u := proxyURL.User; u != nil {
		p, _ := u.Password()
		auth = &proxy.Auth{User: u.Username(), Password: p}
	}

	addr := proxyURL.Host
	if proxyURL.Port() == "" {
		addr = net.JoinHostPort(proxyURL.Hostname(), "1080")
	}
	d, err := proxy.SOCKS5("tcp", addr, auth, dial)
	if err != nil {
		return nil, err
	}

	return &SOCKS5ProxyDialer{dialer: d}, nil
}

func (d *SOCKS5ProxyDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !isTCP(network) {
		return nil, fmt.Errorf("unsupported network: %s", network)
	}
	if cd, ok := d.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}
	return d.dialer.Dial(network, addr)
}
