// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"errors"
	"os/exec"
	"time"
)

// Config describes how the browser is started.
type Config struct {
	// ExecPath is the browser binary, if empty well known names are looked up in PATH.
	ExecPath string
	// UserDataDir is the profile directory, if empty a temporary directory is used and removed on exit.
	UserDataDir string
	Headless    bool
	// Args are passed to the browser after the generated flags.
	Args     []string
	StartURL string

	LaunchTimeout  time.Duration
	CommandTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		StartURL:       "about:blank",
		LaunchTimeout:  30 * time.Second,
		CommandTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.LaunchTimeout <= 0 {
		return errors.New("launch timeout must be positive")
	}
	if c.CommandTimeout <= 0 {
		return errors.New("command timeout must be positive")
	}
	return nil
}

var execNames = []string{ //nolint:gochecknoglobals // constant
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

func (c *Config) execPath() (string, error) {
	if c.ExecPath != "" {
		return c.ExecPath, nil
	}
	for _, name := range execNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("browser executable not found, set the executable path")
}
