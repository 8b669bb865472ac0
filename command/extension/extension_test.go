// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/saucelabs/proxyauth/extension"
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

func TestGenerateAndInspect(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ext")
	zip := filepath.Join(t.TempDir(), "ext.zip")

	execute(t,
		"--profile", "b",
		"--country", "de",
		"--credentials", "brd-customer-x-zone-y:secret",
		"--manifest-version", "2",
		"--out", dir,
		"--zip", zip,
		"--log-level", "error",
	)

	for _, path := range []string{dir, zip} {
		var in extension.Inspection
		require.NoError(t, json.Unmarshal([]byte(execute(t, "inspect", "--json", path)), &in))

		assert.Equal(t, extension.ManifestV2, in.Manifest.ManifestVersion)
		require.Len(t, in.Settings, 1)
		assert.Equal(t, "http", in.Settings[0].Value.SingleProxy().Scheme.String())
		assert.Equal(t, []string{""}, in.Settings[0].Value.BypassList())
		require.Len(t, in.Listeners, 1)
		require.NotNil(t, in.Listeners[0].Response.AuthCredentials)
		assert.Equal(t, "brd-customer-x-zone-y-country-de", in.Listeners[0].Response.AuthCredentials.Username)
		assert.Equal(t, "xxxxx", in.Listeners[0].Response.AuthCredentials.Password)
	}
}

func TestInspectPlain(t *testing.T) {
	color.NoColor = true

	dir := t.TempDir()
	execute(t, "--credentials", "user:secret", "--out", dir, "--log-level", "error")

	out := execute(t, "inspect", "--show-password", dir)
	for _, s := range []string{
		"manifest version: 3",
		"proxy settings: regular",
		"proxy: https://brd.superproxy.io:33335",
		`bypass: ["localhost"]`,
		"extra info: asyncBlocking",
		"username: user",
		"password: secret",
	} {
		assert.Contains(t, out, s)
	}
}

func TestRequiresOutput(t *testing.T) {
	cmd := Command()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--credentials", "user:secret", "--log-level", "error"})
	assert.Error(t, cmd.Execute())
}
