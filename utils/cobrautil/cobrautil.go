// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cobrautil binds cobra commands to environment variables and config files, and describes their flags.
package cobrautil

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"
)

// DefaultLong sets the long description of cmd and its subcommands from the short one if missing,
// and wraps it at the given width.
func DefaultLong(cmd *cobra.Command, width uint) {
	for _, c := range cmd.Commands() {
		DefaultLong(c, width)
	}

	if cmd.Long == "" && cmd.Short != "" {
		cmd.Long = cmd.Short + "."
	}
	cmd.Long = wrapParagraphs(cmd.Long, width)
}

// wrapParagraphs wraps every line of s on its own, so explicit line breaks are kept.
func wrapParagraphs(s string, width uint) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = wordwrap.WrapString(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

func NoHelpSubcommand(cmd *cobra.Command) {
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
