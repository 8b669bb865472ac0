// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/command/cmdlog"
	"github.com/saucelabs/proxyauth/command/extension/inspect"
	"github.com/saucelabs/proxyauth/extension"
	"github.com/saucelabs/proxyauth/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type command struct {
	profile         *proxyauth.ProfileOptions
	manifestVersion extension.ManifestVersion
	outDir          string
	zipFile         string
	logConfig       *log.Config
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	logger, closeLogger := cmdlog.New(cmd, c.logConfig)
	defer closeLogger()
	defer func() {
		cmdlog.LogFatal(cmd, logger, cmdErr)
	}()

	if c.outDir == "" && c.zipFile == "" {
		return errors.New("at least one of --out or --zip is required")
	}

	p, err := c.profile.Profile()
	if err != nil {
		return err
	}
	if err := p.Credential.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	e := extension.New(c.manifestVersion, logger.Named("extension"))
	if err := proxyauth.Setup(context.Background(), e, e, p, logger.Named("setup")); err != nil {
		return err
	}
	b, err := e.Bundle()
	if err != nil {
		return err
	}

	// Both outputs are attempted so that a failing one does not hide the other.
	var errs error
	if c.outDir != "" {
		if err := b.WriteDir(c.outDir); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", c.outDir, err))
		} else {
			logger.Info("extension written", "dir", c.outDir, "manifest_version", c.manifestVersion)
		}
	}
	if c.zipFile != "" {
		if err := b.WriteZipFile(c.zipFile); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", c.zipFile, err))
		} else {
			logger.Info("extension written", "zip", c.zipFile, "manifest_version", c.manifestVersion)
		}
	}

	return errs
}

func Command() *cobra.Command {
	c := command{
		profile:         proxyauth.DefaultProfileOptions(),
		manifestVersion: extension.ManifestV3,
		logConfig:       log.DefaultConfig(),
	}

	cmd := &cobra.Command{
		Use:     "extension [--manifest-version <2|3>] [--out <dir>] [--zip <file>]",
		Short:   "Generate a browser extension that sets the proxy and answers its auth challenges",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Profile(fs, c.profile)
	bind.ManifestVersion(fs, &c.manifestVersion)
	fs.StringVarP(&c.outDir,
		"out", "o", c.outDir, "<path>"+
			"Directory to write the unpacked extension to, it is created if it does not exist. ")
	fs.StringVar(&c.zipFile,
		"zip", c.zipFile, "<path>"+
			"File to write the zipped extension to. ")
	bind.LogConfig(fs, c.logConfig)

	bind.AutoMarkFlagFilename(cmd)
	bind.MarkFlagFilename(cmd, "zip")

	cmd.AddCommand(inspect.Command())

	return cmd
}

const long = `Generate a browser extension that applies the proxy of the profile in regular scope.
The background script registers a blocking listener for all URLs that answers proxy auth challenges with the static credentials.
Manifest version 2 uses a background page and the blocking option, manifest version 3 uses a service worker and asyncBlocking.
Load the unpacked directory with --load-extension or pack the zip file.
`

const example = `  # Generate a manifest V3 extension for profile a
  proxyauth extension --credentials 'brd-customer-x-zone-y:secret' --out ./proxy-ext

  # Generate a manifest V2 extension for profile b as a zip file
  proxyauth extension --profile b --country de --manifest-version 2 --zip proxy-ext.zip
`
