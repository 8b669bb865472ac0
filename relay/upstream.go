// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/dialvia"
)

// upstream is an immutable snapshot of the applied proxy settings.
// Only the cached credential changes after it is created.
type upstream struct {
	config    *proxyauth.ProxyConfig
	bypass    *proxyauth.BypassRules
	proxy     *proxyauth.SingleProxy
	proxyURL  *url.URL
	transport *http.Transport

	// auth is the last credential accepted by a listener, it is sent preemptively.
	auth atomic.Pointer[proxyauth.Credential]
}

func (r *Relay) newUpstream(cfg *proxyauth.ProxyConfig) (*upstream, error) {
	u := &upstream{
		config: cfg,
	}
	if cfg.Mode == proxyauth.DirectMode {
		return u, nil
	}

	br, err := proxyauth.ParseBypassList(cfg.BypassList())
	if err != nil {
		return nil, err
	}
	u.bypass = br
	u.proxy = cfg.SingleProxy()
	u.proxyURL = cfg.ProxyURL()

	tr := r.baseTransport()
	switch u.proxy.Scheme {
	case proxyauth.HTTPScheme, proxyauth.HTTPSScheme:
		tr.Proxy = http.ProxyURL(u.proxyURL)
	case proxyauth.SOCKS5Scheme:
		d, err := dialvia.SOCKS5Proxy(r.dialer.DialContext, u.proxyURL)
		if err != nil {
			return nil, err
		}
		tr.DialContext = d.DialContext
	default:
		return nil, fmt.Errorf("%w: %s upstream is not supported by the relay", proxyauth.ErrInvalidScheme, u.proxy.Scheme)
	}
	u.transport = tr

	return u, nil
}

// direct reports whether a request to scheme://hostport should not use the proxy.
func (u *upstream) direct(scheme, hostport string) bool {
	return u.proxy == nil || u.bypass.MatchHostPort(scheme, hostport)
}

func (u *upstream) cachedAuth() *proxyauth.Credential {
	return u.auth.Load()
}

func (u *upstream) close() {
	if u.transport != nil {
		u.transport.CloseIdleConnections()
	}
}

func (r *Relay) baseTransport() *http.Transport {
	return &http.Transport{
		DialContext:           r.dialer.DialContext,
		TLSClientConfig:       r.config.UpstreamTLSConfig,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   r.config.ConnectTimeout,
		ResponseHeaderTimeout: r.config.ResponseTimeout,
	}
}

// connectVia opens a tunnel to addr through the upstream.
func (r *Relay) connectVia(ctx context.Context, u *upstream, network, addr string) (net.Conn, error) {
	switch u.proxy.Scheme {
	case proxyauth.SOCKS5Scheme:
		d, err := dialvia.SOCKS5Proxy(r.dialer.DialContext, u.proxyURL)
		if err != nil {
			return nil, err
		}
		return d.DialContext(ctx, network, addr)
	default:
		return r.connectWithAuth(ctx, u, network, addr)
	}
}
