// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"fmt"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/command/pac/eval"
	"github.com/saucelabs/proxyauth/pac"
	"github.com/spf13/cobra"
)

type command struct {
	profile *proxyauth.ProfileOptions
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	p, err := c.profile.Profile()
	if err != nil {
		return err
	}

	s, err := pac.Generate(p.Config)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)

	return nil
}

func Command() *cobra.Command {
	c := command{
		profile: proxyauth.DefaultProfileOptions(),
	}

	cmd := &cobra.Command{
		Use:     "pac [--profile <a|b>]",
		Short:   "Print the proxy settings of the profile as a PAC script",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	bind.Profile(cmd.Flags(), c.profile)
	bind.MarkFlagHidden(cmd, "credentials", "country")

	cmd.AddCommand(eval.Command())

	return cmd
}

const long = `Print the proxy settings of the profile as a PAC script.
Hosts matching the bypass list return DIRECT, all other requests go through the proxy.
A PAC script cannot carry credentials, the browser still needs an auth listener, see the extension, relay and chromium commands.
`

const example = `  # Print the PAC script of profile a
  proxyauth pac

  # Print the PAC script of profile b with an extra bypass rule
  proxyauth pac --profile b --bypass "" --bypass "*.internal"
`
