// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cmdlog creates command loggers.
package cmdlog

import (
	"fmt"

	"github.com/saucelabs/proxyauth/internal/version"
	"github.com/saucelabs/proxyauth/log"
	"github.com/saucelabs/proxyauth/log/slog"
	"github.com/saucelabs/proxyauth/utils/cobrautil"
	"github.com/spf13/cobra"
)

// New returns a logger configured by cfg and a function that closes it.
// The close function reports a failing close to the command error output.
func New(cmd *cobra.Command, cfg *log.Config, opts ...slog.Option) (logger *slog.Logger, closeFn func()) {
	logger = slog.New(cfg, opts...)
	return logger, func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close logger: %s\n", err)
		}
	}
}

// LogFatal logs a command error and silences cobra so that the error is reported once.
func LogFatal(cmd *cobra.Command, logger log.StructuredLogger, err error) {
	if err == nil {
		return
	}
	logger.Error("fatal error exiting", "error", err)
	cmd.SilenceErrors = true
}

// LogStart logs the version and the flags changed from their defaults.
// All flags are logged at debug level.
func LogStart(cmd *cobra.Command, logger log.StructuredLogger) error {
	v := version.Get()
	logger.Info("proxyauth "+cmd.Name(), "version", v.Version, "commit", v.Commit)

	cfg, err := cobrautil.FlagsDescriber{
		Format:          cobrautil.Plain,
		ShowChangedOnly: true,
		ShowHidden:      true,
	}.DescribeFlags(cmd.Flags())
	if err != nil {
		return err
	}
	if len(cfg) > 0 {
		logger.Info("configuration\n" + cfg)
	} else {
		logger.Info("using default configuration")
	}

	cfg, err = cobrautil.FlagsDescriber{
		Format:     cobrautil.Plain,
		ShowHidden: true,
	}.DescribeFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Debug("all configuration\n" + cfg)

	return nil
}
