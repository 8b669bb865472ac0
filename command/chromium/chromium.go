// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"context"
	"fmt"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/chromium"
	"github.com/saucelabs/proxyauth/command/cmdlog"
	"github.com/saucelabs/proxyauth/log"
	"github.com/saucelabs/proxyauth/runctx"
	"github.com/spf13/cobra"
)

type command struct {
	profile            *proxyauth.ProfileOptions
	chromiumConfig     *chromium.Config
	incognito          bool
	remoteDebuggingURL string
	logConfig          *log.Config
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	logger, closeLogger := cmdlog.New(cmd, c.logConfig)
	defer closeLogger()
	defer func() {
		cmdlog.LogFatal(cmd, logger, cmdErr)
	}()

	if err := cmdlog.LogStart(cmd, logger); err != nil {
		return err
	}

	p, err := c.profile.Profile()
	if err != nil {
		return err
	}
	if err := p.Credential.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	b, err := chromium.New(c.chromiumConfig, logger.Named("chromium"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := proxyauth.Setup(ctx, b, b, p, logger.Named("setup")); err != nil {
		return err
	}
	if c.incognito {
		details := proxyauth.SettingsDetails{
			Value: p.Config.Clone(),
			Scope: proxyauth.IncognitoSessionOnlyScope,
		}
		if err := b.Set(ctx, details); err != nil {
			return err
		}
	}

	g := runctx.NewGroup()
	g.Add("chromium", func(ctx context.Context) error {
		if c.remoteDebuggingURL != "" {
			return b.Attach(ctx, c.remoteDebuggingURL)
		}
		return b.Run(ctx)
	})

	return g.Run()
}

func Command() *cobra.Command {
	c := command{
		profile:        proxyauth.DefaultProfileOptions(),
		chromiumConfig: chromium.DefaultConfig(),
		logConfig:      log.DefaultConfig(),
	}

	cmd := &cobra.Command{
		Use:     "chromium [--profile <a|b>] [--credentials <username:password>] [--remote-debugging-url <ws-url>]",
		Short:   "Launch Chromium with the proxy of the profile and answer its auth challenges",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Profile(fs, c.profile)
	bind.ChromiumConfig(fs, c.chromiumConfig)
	fs.StringVar(&c.remoteDebuggingURL,
		"remote-debugging-url", c.remoteDebuggingURL, "<ws-url>"+
			"DevTools websocket URL of a running browser. "+
			"If set, the browser is not launched and the proxy can only be applied to an incognito context. ")
	fs.BoolVar(&c.incognito,
		"incognito", c.incognito,
		"Open an incognito browser context that uses the proxy of the profile. ")
	bind.LogConfig(fs, c.logConfig)

	cmd.MarkFlagsMutuallyExclusive("remote-debugging-url", "chromium-path")
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}

const long = `Launch Chromium configured with the proxy of the profile.
The browser is controlled over the DevTools protocol, requests are resumed and proxy auth challenges are answered with the static credentials.
A challenge repeated for the same request is cancelled, so wrong credentials fail instead of looping.
With --incognito the proxy is also set on a new incognito browser context.
With --remote-debugging-url an already running browser is used, combine it with --incognito to apply the proxy.
`

const example = `  # Launch Chromium with profile a
  proxyauth chromium --credentials 'brd-customer-x-zone-y:secret'

  # Launch headless Chromium with profile b and a custom start page
  proxyauth chromium --profile b --headless --start-url https://geo.brdtest.com/welcome.txt

  # Attach to a running browser and open an incognito context using the proxy
  proxyauth chromium --remote-debugging-url ws://127.0.0.1:9222/devtools/browser/ID --incognito
`
