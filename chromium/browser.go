// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package chromium applies proxy settings to a Chromium browser and answers its proxy auth challenges
// over the DevTools protocol.
package chromium

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/target"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/log"
)

// Browser is a Chromium host.
// Regular scope settings become command line flags and must be set before Run,
// incognito scope settings create a new browser context with its own proxy.
type Browser struct {
	*proxyauth.Dispatcher

	config Config
	log    log.StructuredLogger

	mu        sync.Mutex
	regular   *proxyauth.ProxyConfig
	incognito *proxyauth.ProxyConfig
	conn      *conn
	contexts  []cdp.BrowserContextID
	attempts  map[fetch.RequestID]attempt
}

var (
	_ proxyauth.ProxySettings      = (*Browser)(nil)
	_ proxyauth.AuthRequiredEvents = (*Browser)(nil)
)

func New(cfg *Config, log log.StructuredLogger) (*Browser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Browser{
		Dispatcher: proxyauth.NewDispatcher(log),
		config:     *cfg,
		log:        log,
		attempts:   make(map[fetch.RequestID]attempt),
	}, nil
}

// Set stores regular scope settings for launch or applies incognito scope settings to a new browser context.
func (b *Browser) Set(ctx context.Context, details proxyauth.SettingsDetails) error {
	s, err := proxyauth.ParseScope(details.Scope.String())
	if err != nil {
		return err
	}
	cfg := details.Value.Clone()
	if err := cfg.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	if !s.IsIncognito() {
		defer b.mu.Unlock()
		if b.conn != nil {
			return fmt.Errorf("%w: %s settings must be set before the browser is started", proxyauth.ErrUnsupportedScope, s)
		}
		if _, err := proxyFlags(cfg); err != nil {
			return err
		}
		b.regular = cfg
		return nil
	}
	if _, _, err := contextProxy(cfg); err != nil {
		b.mu.Unlock()
		return err
	}
	b.incognito = cfg
	c := b.conn
	b.mu.Unlock()

	if c == nil {
		return nil
	}
	return b.createContext(ctx, c, cfg)
}

// proxyFlags returns the command line flags for cfg.
func proxyFlags(cfg *proxyauth.ProxyConfig) ([]string, error) {
	switch cfg.Mode {
	case proxyauth.DirectMode:
		return []string{"--no-proxy-server"}, nil
	case proxyauth.AutoDetectMode:
		return []string{"--proxy-auto-detect"}, nil
	case proxyauth.SystemMode:
		return nil, nil
	case proxyauth.FixedServersMode:
		return []string{
			"--proxy-server=" + cfg.ProxyURL().String(),
			"--proxy-bypass-list=" + strings.Join(cfg.BypassList(), ";"),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
}

// contextProxy returns the proxy server and bypass list of a browser context for cfg.
func contextProxy(cfg *proxyauth.ProxyConfig) (server, bypass string, err error) {
	switch cfg.Mode {
	case proxyauth.DirectMode:
		return "direct://", "", nil
	case proxyauth.FixedServersMode:
		return cfg.ProxyURL().String(), strings.Join(cfg.BypassList(), ";"), nil
	default:
		return "", "", fmt.Errorf("unsupported mode for a browser context: %s", cfg.Mode)
	}
}

// Run starts the browser and answers its auth challenges until ctx is done or the browser exits.
func (b *Browser) Run(ctx context.Context) error {
	b.mu.Lock()
	regular := b.regular
	b.mu.Unlock()

	var args []string
	if regular != nil {
		var err error
		if args, err = proxyFlags(regular); err != nil {
			return err
		}
	}

	p, err := launch(ctx, &b.config, args, b.log)
	if err != nil {
		return err
	}
	b.log.Info("browser DevTools ready", "url", p.wsURL)

	return b.serve(ctx, p.wsURL, p.done)
}

// Attach connects to a running browser. Regular scope settings cannot be applied to it.
func (b *Browser) Attach(ctx context.Context, wsURL string) error {
	b.mu.Lock()
	regular := b.regular
	b.mu.Unlock()
	if regular != nil {
		b.log.Warn("regular proxy settings are ignored for an attached browser", "proxy", regular.ProxyURL())
	}

	return b.serve(ctx, wsURL, nil)
}

func (b *Browser) serve(ctx context.Context, wsURL string, exited <-chan error) error {
	c, err := dial(ctx, wsURL, b.handleEvent, b.log)
	if err != nil {
		return err
	}
	defer c.close()

	b.mu.Lock()
	b.conn = c
	incognito := b.incognito
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.conn = nil
		b.mu.Unlock()
	}()

	if err := b.enable(ctx, c); err != nil {
		return err
	}
	if incognito != nil {
		if err := b.createContext(ctx, c, incognito); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		if exited != nil {
			cctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
			defer cancel()
			if err := browser.Close().Do(cdp.WithExecutor(cctx, c.session(""))); err != nil {
				b.log.Debug("browser close", "error", err)
			}
		}
		return nil
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("browser exited: %w", err)
		}
		return errors.New("browser exited")
	case <-c.done:
		return c.closeErr()
	}
}

// enable turns on request interception with auth handling for the whole browser.
func (b *Browser) enable(ctx context.Context, c *conn) error {
	ctx, cancel := context.WithTimeout(ctx, b.config.CommandTimeout)
	defer cancel()

	if err := fetch.Enable().WithHandleAuthRequests(true).Do(cdp.WithExecutor(ctx, c.session(""))); err != nil {
		return fmt.Errorf("enable fetch: %w", err)
	}
	b.log.Debug("fetch enabled")
	return nil
}

func (b *Browser) createContext(ctx context.Context, c *conn, cfg *proxyauth.ProxyConfig) error {
	server, bypass, err := contextProxy(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.CommandTimeout)
	defer cancel()
	ctx = cdp.WithExecutor(ctx, c.session(""))

	id, err := target.CreateBrowserContext().
		WithProxyServer(server).
		WithProxyBypassList(bypass).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("create browser context: %w", err)
	}
	tid, err := target.CreateTarget(b.config.StartURL).WithBrowserContextID(id).Do(ctx)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	b.mu.Lock()
	b.contexts = append(b.contexts, id)
	b.mu.Unlock()
	b.log.Info("browser context created", "context", id, "target", tid, "proxy", server, "bypass", bypass)

	return nil
}

// BrowserContexts returns the browser contexts created for incognito scope settings.
func (b *Browser) BrowserContexts() []cdp.BrowserContextID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]cdp.BrowserContextID(nil), b.contexts...)
}

func (b *Browser) commandContext(c *conn, sessionID target.SessionID) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
	return cdp.WithExecutor(ctx, c.session(sessionID)), cancel
}

// attemptTTL bounds how long challenge counts are kept for requests that never come back.
const attemptTTL = time.Minute
