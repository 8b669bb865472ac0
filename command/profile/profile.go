// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package profile

import (
	"encoding/json"
	"fmt"

	"github.com/mmatczuk/anyflag"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type format string

const (
	jsonFormat format = "json"
	yamlFormat format = "yaml"
)

func parseFormat(val string) (format, error) {
	switch f := format(val); f {
	case jsonFormat, yamlFormat:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", val)
	}
}

type command struct {
	profile *proxyauth.ProfileOptions
	format  format
}

// profileView is what the command prints, the credential is redacted.
type profileView struct {
	Name       string                 `json:"name"`
	Config     *proxyauth.ProxyConfig `json:"config"`
	Credential string                 `json:"credential"`
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	p, err := c.profile.Profile()
	if err != nil {
		return err
	}
	v := profileView{
		Name:       p.Name,
		Config:     p.Config,
		Credential: bind.RedactCredential(p.Credential),
	}

	w := cmd.OutOrStdout()
	switch c.format {
	case yamlFormat:
		// The config has JSON field names only, it is converted through a generic value.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func Command() *cobra.Command {
	c := command{
		profile: proxyauth.DefaultProfileOptions(),
		format:  jsonFormat,
	}

	cmd := &cobra.Command{
		Use:     "profile [--profile <a|b>] [--format <json|yaml>]",
		Short:   "Print the proxy config and redacted credential of the profile",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Profile(fs, c.profile)
	fs.Var(anyflag.NewValue[format](c.format, &c.format, parseFormat),
		"format", "<json|yaml>"+
			"Output format. ")

	return cmd
}

const long = `Print the proxy config submitted by the profile in regular scope and the credential answered to challenges.
The config is printed in the shape passed to the browser proxy settings API.
The password is redacted.
`

const example = `  # Print profile b for Germany
  proxyauth profile --profile b --country de --credentials 'brd-customer-x-zone-y:secret'
`
