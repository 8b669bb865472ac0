// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestSplitFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	for _, name := range []string{"proxy-host", "proxy-port", "profile", "log-level", "api-address", "address", "headless"} {
		fs.String(name, "", "")
	}

	g := FlagGroups{
		{Name: "Profile", Prefix: []string{"profile", "proxy", "credentials"}},
		{Name: "API", Prefix: []string{"api"}},
		{Name: "Logging", Prefix: []string{"log"}},
		{Name: "Options", Prefix: []string{"config-file"}},
	}

	var got [][]string
	for _, s := range SplitFlagSet(g, fs) {
		var names []string
		s.VisitAll(func(f *pflag.Flag) { names = append(names, f.Name) })
		got = append(got, names)
	}
	want := [][]string{
		{"profile", "proxy-host", "proxy-port"},
		{"api-address"},
		{"log-level"},
		{"address", "headless"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestFlagNameAndUsage(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config-file", "", "<path>Configuration file.")
	fs.String("profile", "a", "<a|b>Proxy settings preset.")
	fs.Bool("headless", false, "Run headless.")
	fs.String("plain", "", "Plain usage.")

	tests := []struct {
		flag, name, usage string
	}{
		{"config-file", " <path>", "Configuration file."},
		{"profile", " <a|b>", "Proxy settings preset."},
		{"headless", "", "Run headless."},
		{"plain", " <value>", "Plain usage."},
	}
	for _, tc := range tests {
		name, usage := flagNameAndUsage(fs.Lookup(tc.flag))
		if name != tc.name || usage != tc.usage {
			t.Errorf("%s: got %q %q", tc.flag, name, usage)
		}
	}
}

func TestHelpFlagPrinter(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("profile", "p", "a", "<a|b>Proxy settings preset.")

	var buf bytes.Buffer
	NewHelpFlagPrinter(&buf, "PROXYAUTH", 80).PrintHelpFlag(fs.Lookup("profile"))

	want := "  -p, --profile <a|b> (default 'a') (env PROXYAUTH_PROFILE)\n\tProxy settings preset.\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestYamlFlagPrinter(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("country", "us", "<code>Country code.")

	var buf bytes.Buffer
	NewYamlFlagPrinter(&buf, 80).PrintHelpFlag(fs.Lookup("country"))

	want := "# Country code.\n#\n#country: us\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}
