// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	// Addr is the address the relay listens on for browser connections.
	Addr string `json:"addr"`

	ConnectTimeout time.Duration `json:"connect_timeout"`
	// ResponseTimeout bounds every client connection read and write, including tunnels.
	ResponseTimeout time.Duration `json:"response_timeout"`

	// UpstreamTLSConfig is used when the proxy scheme is https.
	UpstreamTLSConfig *tls.Config `json:"-"`

	PromNamespace string                `json:"-"`
	PromRegistry  prometheus.Registerer `json:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:            "localhost:3128",
		ConnectTimeout:  30 * time.Second,
		ResponseTimeout: 5 * time.Minute,
		PromNamespace:   "proxyauth",
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("connect_timeout must be positive")
	}
	if c.ResponseTimeout <= 0 {
		return errors.New("response_timeout must be positive")
	}
	return nil
}
