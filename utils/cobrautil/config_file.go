// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"io"

	"github.com/saucelabs/proxyauth/utils/cobrautil/templates"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ConfigFileCommand returns a hidden command that prints a commented out YAML config file template for the flags in fs.
// The config file flag itself is skipped, it cannot be set from the file.
func ConfigFileCommand(g templates.FlagGroups, fs *pflag.FlagSet, envPrefix, configFileFlagName string) *cobra.Command {
	return &cobra.Command{
		Use:    "config-file",
		Short:  "Print a config file template",
		Args:   cobra.NoArgs,
		Hidden: true,
		Run: func(cmd *cobra.Command, _ []string) {
			writeConfigFile(cmd.OutOrStdout(), cmd.Parent(), g, fs, envPrefix, configFileFlagName)
		},
	}
}

func writeConfigFile(w io.Writer, parent *cobra.Command, g templates.FlagGroups, fs *pflag.FlagSet, envPrefix, configFileFlagName string) {
	if parent != nil {
		fmt.Fprintf(w, "# %s configuration file\n", parent.CommandPath())
		fmt.Fprintf(w, "# Values set here are overridden by %s_* environment variables and command flags.\n\n", envPrefix)
	}

	p := templates.NewYamlFlagPrinter(w, 80)
	for i, gfs := range templates.SplitFlagSet(g, fs) {
		header := true
		gfs.VisitAll(func(f *pflag.Flag) {
			if f.Hidden || f.Deprecated != "" || f.Name == configFileFlagName {
				return
			}
			if header {
				fmt.Fprintf(w, "# --- %s ---\n\n", g[i].Name)
				header = false
			}
			p.PrintHelpFlag(f)
		})
	}
}

// AddConfigFileForEachCommand adds ConfigFileCommand to cmd and all its available subcommands that have flags.
func AddConfigFileForEachCommand(cmd *cobra.Command, g templates.FlagGroups, envPrefix, configFileFlagName string) {
	for _, c := range cmd.Commands() {
		AddConfigFileForEachCommand(c, g, envPrefix, configFileFlagName)
	}

	if cmd.IsAvailableCommand() && cmd.Flags().HasFlags() {
		cmd.AddCommand(ConfigFileCommand(g, cmd.Flags(), envPrefix, configFileFlagName))
	}
}
