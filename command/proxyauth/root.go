// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/command/chromium"
	"github.com/saucelabs/proxyauth/command/extension"
	"github.com/saucelabs/proxyauth/command/pac"
	"github.com/saucelabs/proxyauth/command/profile"
	"github.com/saucelabs/proxyauth/command/relay"
	"github.com/saucelabs/proxyauth/command/version"
	"github.com/saucelabs/proxyauth/utils/cobrautil"
	"github.com/saucelabs/proxyauth/utils/cobrautil/templates"
	"github.com/spf13/cobra"
)

const (
	EnvPrefix          = "PROXYAUTH"
	ConfigFileFlagName = "config-file"
	DotEnvFile         = ".env"
)

func FlagGroups() templates.FlagGroups {
	return templates.FlagGroups{
		{
			Name: "Profile options",
			Prefix: []string{
				"profile",
				"credentials",
				"country",
				"proxy",
				"bypass",
			},
		},
		{
			Name: "Relay options",
			Prefix: []string{
				"address",
				"connect-timeout",
				"response-timeout",
				"insecure",
			},
		},
		{
			Name: "Browser options",
			Prefix: []string{
				"chromium",
				"user-data-dir",
				"headless",
				"start-url",
				"launch-timeout",
				"remote-debugging-url",
				"incognito",
			},
		},
		{
			Name: "Extension options",
			Prefix: []string{
				"manifest-version",
				"out",
				"zip",
			},
		},
		{
			Name:   "API server options",
			Prefix: []string{"api"},
		},
		{
			Name:   "Logging options",
			Prefix: []string{"log"},
		},
		{
			Name:   "Options",
			Prefix: []string{"config-file"},
		},
	}
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxyauth",
		Short: "Configure a browser to use an authenticated upstream proxy and answer its challenges",
		Long:  long,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cobrautil.LoadDotEnv(DotEnvFile); err != nil {
				return err
			}
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
		SilenceUsage: true,
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))

	cmd.AddCommand(
		relay.Command(),
		chromium.Command(),
		extension.Command(),
		pac.Command(),
		profile.Command(),
		version.Command(),
	)

	g := FlagGroups()
	cobrautil.AddConfigFileForEachCommand(cmd, g, EnvPrefix, ConfigFileFlagName)
	cobrautil.DefaultLong(cmd, 80)
	cobrautil.NoHelpSubcommand(cmd)
	cmd.SetUsageFunc(templates.UsageFunc(g, EnvPrefix))

	return cmd
}

const long = `Configure a browser to route traffic through brd.superproxy.io:33335 and answer its proxy auth challenges with static credentials.
Profile a uses https and bypasses localhost, profile b uses http, an empty bypass entry and a country suffix on the username.
Flags can be set with PROXYAUTH_ environment variables, a config file, or a .env file in the working directory.
`
