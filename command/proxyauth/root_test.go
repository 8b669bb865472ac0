// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	cmd := Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	return out.String()
}

func TestEnvAndConfigFile(t *testing.T) {
	t.Setenv("PROXYAUTH_CREDENTIALS", "brd-customer-x-zone-y:secret")
	t.Setenv("PROXYAUTH_COUNTRY", "fr")

	cfg := filepath.Join(t.TempDir(), "proxyauth.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("profile: b\ncountry: de\n"), 0o600))

	out := execute(t, "profile", "--config-file", cfg)
	assert.Contains(t, out, `"name": "b"`)
	assert.Contains(t, out, `"credential": "brd-customer-x-zone-y-country-fr:xxxxx"`, "environment takes precedence over the config file")

	out = execute(t, "profile", "--config-file", cfg, "--country", "it")
	assert.Contains(t, out, "-country-it:xxxxx", "flags take precedence over the environment")
}

func TestConfigFileTemplate(t *testing.T) {
	out := execute(t, "relay", "config-file")

	assert.Contains(t, out, "# proxyauth relay configuration file\n")
	assert.Contains(t, out, "# --- Profile options ---")
	assert.Contains(t, out, "#profile: a\n")
	assert.Contains(t, out, "# --- Relay options ---")
	assert.Contains(t, out, "#address: localhost:3128\n")
	assert.NotContains(t, out, "#config-file:")
	assert.NotContains(t, out, "#credentials: ")
}

func TestUsageGroupsFlags(t *testing.T) {
	cmd := Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"chromium", "--help"})
	require.NoError(t, cmd.Execute())

	s := out.String()
	for _, g := range []string{"Profile options:", "Browser options:", "Logging options:", "Options:"} {
		assert.Contains(t, s, g)
	}
	assert.Less(t, strings.Index(s, "Profile options:"), strings.Index(s, "Browser options:"))
	assert.Contains(t, s, "(env PROXYAUTH_REMOTE_DEBUGGING_URL)")
}

func TestVersion(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "Version:")
}
