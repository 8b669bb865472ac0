// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/extension"
	"github.com/spf13/cobra"
)

type command struct {
	challengeURL string
	json         bool
	showPassword bool
}

func (c *command) runE(cmd *cobra.Command, args []string) error {
	b, err := extension.Read(args[0])
	if err != nil {
		return err
	}

	ch, err := c.challenge()
	if err != nil {
		return err
	}

	in, err := extension.Inspect(b, ch)
	if err != nil {
		return err
	}
	if !c.showPassword {
		redact(in)
	}

	w := cmd.OutOrStdout()
	if c.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	}
	printInspection(w, in)
	return nil
}

func (c *command) challenge() (proxyauth.AuthChallenge, error) {
	u, err := url.Parse(c.challengeURL)
	if err != nil {
		return proxyauth.AuthChallenge{}, fmt.Errorf("parse challenge URL: %w", err)
	}
	ch := proxyauth.AuthChallenge{
		RequestID: "1",
		URL:       u.String(),
		Method:    "GET",
		IsProxy:   true,
		Challenger: proxyauth.Challenger{
			Host: proxyauth.SuperproxyHost,
			Port: proxyauth.SuperproxyPort,
		},
		Scheme: "basic",
		Count:  1,
	}
	return ch, nil
}

func redact(in *extension.Inspection) {
	for i := range in.Listeners {
		if c := in.Listeners[i].Response.AuthCredentials; c != nil && c.Password != "" {
			r := *c
			r.Password = "xxxxx"
			in.Listeners[i].Response.AuthCredentials = &r
		}
	}
}

func printInspection(w io.Writer, in *extension.Inspection) {
	key := color.New(color.Bold).SprintFunc()
	val := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", key("name:"), val(in.Manifest.Name))
	fmt.Fprintf(w, "%s %s\n", key("manifest version:"), val(in.Manifest.ManifestVersion))
	fmt.Fprintf(w, "%s %s\n", key("permissions:"), val(strings.Join(in.Manifest.Permissions, ", ")))

	if len(in.Settings) == 0 {
		fmt.Fprintln(w, warn("no proxy settings applied"))
	}
	for _, s := range in.Settings {
		fmt.Fprintf(w, "%s %s\n", key("proxy settings:"), val(s.Scope))
		fmt.Fprintf(w, "  %s %s\n", key("mode:"), val(s.Value.Mode))
		if u := s.Value.ProxyURL(); u != nil {
			fmt.Fprintf(w, "  %s %s\n", key("proxy:"), val(u))
		}
		bypass := make([]string, 0, len(s.Value.BypassList()))
		for _, b := range s.Value.BypassList() {
			bypass = append(bypass, strconv.Quote(b))
		}
		fmt.Fprintf(w, "  %s [%s]\n", key("bypass:"), val(strings.Join(bypass, ", ")))
	}

	if len(in.Listeners) == 0 {
		fmt.Fprintln(w, warn("no auth listener registered"))
	}
	for i, l := range in.Listeners {
		fmt.Fprintf(w, "%s %d\n", key("auth listener:"), i)
		fmt.Fprintf(w, "  %s %s\n", key("urls:"), val(strings.Join(l.Filter.URLs, ", ")))
		spec := make([]string, 0, len(l.ExtraInfoSpec))
		for _, s := range l.ExtraInfoSpec {
			spec = append(spec, string(s))
		}
		fmt.Fprintf(w, "  %s %s\n", key("extra info:"), val(strings.Join(spec, ", ")))
		switch {
		case l.Response.AuthCredentials != nil:
			fmt.Fprintf(w, "  %s %s\n", key("username:"), val(l.Response.AuthCredentials.Username))
			fmt.Fprintf(w, "  %s %s\n", key("password:"), val(l.Response.AuthCredentials.Password))
		case l.Response.Cancel:
			fmt.Fprintf(w, "  %s\n", warn("cancels the request"))
		default:
			fmt.Fprintf(w, "  %s\n", warn("does not answer"))
		}
	}

	for _, line := range in.Console {
		fmt.Fprintf(w, "%s %s\n", key("console:"), line)
	}
}

func Command() *cobra.Command {
	c := command{
		challengeURL: "https://geo.brdtest.com/welcome.txt",
	}

	cmd := &cobra.Command{
		Use:     "inspect [--json] <dir|zip>",
		Short:   "Run the background script of an extension and print what it submits to the browser",
		Long:    long,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	fs.StringVar(&c.challengeURL,
		"url", c.challengeURL, "<url>"+
			"URL of the request passed to the auth listeners. ")
	fs.BoolVar(&c.json,
		"json", c.json,
		"Print the result as JSON. ")
	fs.BoolVar(&c.showPassword,
		"show-password", c.showPassword,
		"Print the password returned by the auth listeners. ")

	return cmd
}

const long = `Run the background script of an unpacked or zipped extension against a stub of the chrome API.
The proxy settings and the registered auth listeners are printed.
Every listener is called with a proxy auth challenge for the given URL and its answer is printed, the password is redacted unless --show-password is set.
`

const example = `  # Inspect an unpacked extension
  proxyauth extension inspect ./proxy-ext

  # Inspect a zipped extension and print JSON
  proxyauth extension inspect --json proxy-ext.zip
`
