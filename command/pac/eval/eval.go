// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package eval

import (
	"fmt"
	"net/url"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/pac"
	"github.com/spf13/cobra"
)

type command struct {
	profile *proxyauth.ProfileOptions
	pac     *url.URL
}

func (c *command) script(cmd *cobra.Command) (string, error) {
	if c.pac != nil {
		return pac.ReadScript(cmd.Context(), c.pac, nil)
	}

	p, err := c.profile.Profile()
	if err != nil {
		return "", err
	}
	return pac.Generate(p.Config)
}

func (c *command) runE(cmd *cobra.Command, args []string) error {
	script, err := c.script(cmd)
	if err != nil {
		return err
	}

	cfg := pac.ProxyResolverConfig{
		Script:    script,
		AlertSink: cmd.ErrOrStderr(),
	}
	pr, err := pac.NewProxyResolverPool(&cfg, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, arg := range args {
		u, err := url.Parse(arg)
		if err != nil {
			return fmt.Errorf("parse URL: %w", err)
		}
		proxy, err := pr.FindProxyForURL(u, "")
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		fmt.Fprintln(w, proxy)
	}

	return nil
}

func Command() *cobra.Command {
	c := command{
		profile: proxyauth.DefaultProfileOptions(),
	}

	cmd := &cobra.Command{
		Use:     "eval [--pac <path|url>] [--profile <a|b>] <url>...",
		Short:   "Evaluate a PAC script for given URL (or URLs)",
		Long:    long,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Profile(fs, c.profile)
	bind.PACSource(fs, &c.pac)
	bind.MarkFlagHidden(cmd, "credentials", "country")
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}

const long = `Evaluate a PAC script for given URL (or URLs).
The output is a list of proxy strings, one per URL.
Without --pac the script generated for the profile is evaluated, this shows which hosts bypass the proxy.
Alerts are written to stderr.
`

const example = `  # Check which URLs bypass the proxy of profile a
  proxyauth pac eval http://localhost:8080 https://www.walmart.com

  # Evaluate a PAC file
  proxyauth pac eval --pac pac.js https://www.google.com

  # Evaluate the PAC script generated for profile b read from stdin
  proxyauth pac --profile b | proxyauth pac eval --pac - https://www.google.com
`
