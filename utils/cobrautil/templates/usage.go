// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const wrapLimit = 80

// UsageFunc prints the usage of a command with flags split into groups.
func UsageFunc(g FlagGroups, envPrefix string) func(cmd *cobra.Command) error {
	return func(cmd *cobra.Command) error {
		w := cmd.OutOrStderr()

		fmt.Fprintf(w, "Usage:\n  %s\n", cmd.UseLine())
		if cmd.HasAvailableSubCommands() {
			fmt.Fprintf(w, "  %s [command]\n", cmd.CommandPath())
		}

		if cmd.HasExample() {
			fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		}

		if cmd.HasAvailableSubCommands() {
			fmt.Fprintln(w, "\nCommands:")
			for _, c := range cmd.Commands() {
				if c.IsAvailableCommand() {
					fmt.Fprintf(w, "  %-*s %s\n", cmd.NamePadding(), c.Name(), c.Short)
				}
			}
		}

		fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
		fs.AddFlagSet(cmd.LocalFlags())
		fs.AddFlagSet(cmd.InheritedFlags())

		p := NewHelpFlagPrinter(w, envPrefix, wrapLimit)
		for i, gfs := range SplitFlagSet(g, fs) {
			if !gfs.HasAvailableFlags() {
				continue
			}
			fmt.Fprintf(w, "\n%s:\n", g[i].Name)
			gfs.VisitAll(func(f *pflag.Flag) {
				if !f.Hidden {
					p.PrintHelpFlag(f)
				}
			})
		}

		if cmd.HasAvailableSubCommands() {
			fmt.Fprintf(w, "\nUse \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
		}
		return nil
	}
}
