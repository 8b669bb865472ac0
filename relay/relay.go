// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package relay implements a local forward proxy that applies proxy settings and answers proxy auth challenges.
// Browsers and other clients point at the relay instead of the authenticated upstream proxy.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/martian/v3"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/log"
)

// Relay is a forward proxy for HTTP and CONNECT requests.
// It implements ProxySettings and AuthRequiredEvents so that it can be set up like a browser.
type Relay struct {
	*proxyauth.Dispatcher

	config  Config
	log     log.StructuredLogger
	metrics *metrics
	dialer  *net.Dialer
	direct  *http.Transport
	proxy   *martian.Proxy

	up        atomic.Pointer[upstream]
	requestID atomic.Uint64

	mu       sync.Mutex
	listener net.Listener
}

var (
	_ proxyauth.ProxySettings      = (*Relay)(nil)
	_ proxyauth.AuthRequiredEvents = (*Relay)(nil)
)

func New(cfg *Config, log log.StructuredLogger) (*Relay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Relay{
		Dispatcher: proxyauth.NewDispatcher(log),
		config:     *cfg,
		log:        log,
		metrics:    newMetrics(cfg.PromRegistry, cfg.PromNamespace),
		dialer: &net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		},
	}
	r.direct = r.baseTransport()

	direct, err := r.newUpstream(&proxyauth.ProxyConfig{Mode: proxyauth.DirectMode})
	if err != nil {
		return nil, err
	}
	r.up.Store(direct)

	r.proxy = martian.NewProxy()
	r.proxy.SetRoundTripper(transport{r})
	r.proxy.SetDial(r.dial)
	r.proxy.SetTimeout(cfg.ResponseTimeout)
	r.proxy.SetRequestModifier(martian.RequestModifierFunc(r.logRequest))

	return r, nil
}

// Set applies the proxy settings to new requests and tunnels, established tunnels are not affected.
func (r *Relay) Set(ctx context.Context, details proxyauth.SettingsDetails) error {
	s, err := proxyauth.ParseScope(details.Scope.String())
	if err != nil {
		return err
	}
	if s.IsIncognito() {
		return fmt.Errorf("%w: relay has no incognito profile", proxyauth.ErrUnsupportedScope)
	}

	cfg := details.Value.Clone()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Mode != proxyauth.FixedServersMode && cfg.Mode != proxyauth.DirectMode {
		return fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}

	u, err := r.newUpstream(cfg)
	if err != nil {
		return err
	}
	if old := r.up.Swap(u); old != nil {
		old.close()
	}
	r.log.InfoContext(ctx, "proxy settings applied", "mode", cfg.Mode, "proxy", cfg.ProxyURL(), "bypass", cfg.BypassList())

	return nil
}

// ProxyConfig returns the applied proxy config.
func (r *Relay) ProxyConfig() *proxyauth.ProxyConfig {
	return r.upstream().config.Clone()
}

func (r *Relay) upstream() *upstream {
	return r.up.Load()
}

// dial is used by the proxy for CONNECT requests.
func (r *Relay) dial(network, addr string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.ConnectTimeout)
	defer cancel()

	u := r.upstream()
	if u.direct("https", addr) {
		r.metrics.request(routeDirect, "connect")
		return r.dialer.DialContext(ctx, network, addr)
	}
	r.metrics.request(routeProxy, "connect")

	conn, err := r.connectVia(ctx, u, network, addr)
	if err != nil {
		r.log.Warn("tunnel failed", "addr", addr, "proxy", u.proxyURL, "error", err)
	}
	return conn, err
}

func (r *Relay) logRequest(req *http.Request) error {
	r.log.Debug("request", "method", req.Method, "url", req.URL.Redacted(), "remote_addr", req.RemoteAddr)
	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	r.mu.Lock()
	r.listener = l
	r.mu.Unlock()
	r.log.Info("relay listening", "addr", l.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.proxy.Serve(l)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		l.Close()
		return fmt.Errorf("serve: %w", err)
	}

	r.log.Info("relay shutting down")
	l.Close()
	r.proxy.Close()
	r.up.Load().close()
	r.direct.CloseIdleConnections()

	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		r.log.Debug("serve returned", "error", err)
	}
	return nil
}

// Addr returns the listener address, or an empty string if the relay is not running.
func (r *Relay) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}
