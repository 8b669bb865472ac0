// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/bind"
	"github.com/saucelabs/proxyauth/command/cmdlog"
	"github.com/saucelabs/proxyauth/internal/version"
	"github.com/saucelabs/proxyauth/log"
	"github.com/saucelabs/proxyauth/log/martianlog"
	"github.com/saucelabs/proxyauth/log/slog"
	"github.com/saucelabs/proxyauth/relay"
	"github.com/saucelabs/proxyauth/runctx"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
)

type command struct {
	promReg     *prometheus.Registry
	profile     *proxyauth.ProfileOptions
	relayConfig *relay.Config
	apiAddr     string
	logConfig   *log.Config

	dryRun bool
	goleak bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	onError, err := c.registerErrorsMetric()
	if err != nil {
		return fmt.Errorf("register errors metric: %w", err)
	}
	logger, closeLogger := cmdlog.New(cmd, c.logConfig, slog.WithOnError(onError))
	defer closeLogger()
	defer func() {
		cmdlog.LogFatal(cmd, logger, cmdErr)
	}()

	if err := cmdlog.LogStart(cmd, logger); err != nil {
		return err
	}
	logger.Debug("resource limits", "GOMAXPROCS", runtime.GOMAXPROCS(0), "GOMEMLIMIT", os.Getenv("GOMEMLIMIT"))

	p, err := c.profile.Profile()
	if err != nil {
		return err
	}
	if err := p.Credential.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	martianlog.SetLogger(logger.Named("martian"))

	c.relayConfig.PromRegistry = c.promReg
	r, err := relay.New(c.relayConfig, logger.Named("relay"))
	if err != nil {
		return err
	}
	if err := proxyauth.Setup(context.Background(), r, r, p, logger.Named("setup")); err != nil {
		return err
	}

	g := runctx.NewGroup()
	g.Add("relay", r.Run)

	if err := multierr.Combine(
		c.registerProcMetrics(),
		c.registerGoMaxProcsMetric(),
		c.registerVersionMetric(),
	); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if c.apiAddr != "" {
		a := relay.NewAPIServer(c.apiAddr, relay.NewAPIHandler(c.promReg, r), logger.Named("api"))
		g.Add("api", a.Run)
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
				os.Exit(1)
			}
		}()
	}

	if c.dryRun {
		return nil
	}

	return g.Run()
}

func (c *command) registerErrorsMetric() (func(name string), error) {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.relayConfig.PromNamespace,
		Name:      "errors_total",
		Help:      "Number of errors logged",
	}, []string{"name"})

	if err := c.promReg.Register(m); err != nil {
		return nil, err
	}

	return func(name string) {
		m.WithLabelValues(name).Inc()
	}, nil
}

func (c *command) registerGoMaxProcsMetric() error {
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "go_env",
		Name:      "gomaxprocs",
		Help:      "Number of maximum goroutines that can be executed simultaneously",
	}, func() float64 {
		return float64(runtime.GOMAXPROCS(0))
	}))
}

func (c *command) registerProcMetrics() error {
	return multierr.Combine(
		// ProcessCollector is only available on Linux and Windows.
		c.promReg.Register(collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{Namespace: c.relayConfig.PromNamespace})),
		c.promReg.Register(collectors.NewGoCollector()),
	)
}

func (c *command) registerVersionMetric() error {
	v := version.Get()
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.relayConfig.PromNamespace,
		Name:      "version",
		Help:      "proxyauth version, value is always 1",
		ConstLabels: prometheus.Labels{
			"version": v.Version,
			"commit":  v.Commit,
			"time":    v.Time,
		},
	}, func() float64 {
		return 1
	}))
}

func Command() *cobra.Command {
	c := makeCommand()

	cmd := &cobra.Command{
		Use:     "relay [--address <host:port>] [--profile <a|b>] [--credentials <username:password>]",
		Short:   "Start a local proxy that forwards to the upstream proxy and answers its auth challenges",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Profile(fs, c.profile)
	bind.RelayConfig(fs, c.relayConfig)
	bind.APIAddress(fs, &c.apiAddr)
	bind.LogConfig(fs, c.logConfig)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")
	bind.MarkFlagHidden(cmd, "goleak")
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}

// Metrics returns the registry of a relay command that was set up but not run.
func Metrics() (*prometheus.Registry, error) {
	c := makeCommand()
	c.logConfig = &log.Config{
		Level: log.ErrorLevel,
	}
	c.profile.Credential = proxyauth.Credential{Username: "user", Password: "pass"}
	c.relayConfig.Addr = "localhost:0"
	c.dryRun = true

	cmd := &cobra.Command{
		Use:                "relay",
		RunE:               c.runE,
		DisableFlagParsing: true,
	}
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	return c.promReg, nil
}

func makeCommand() command {
	return command{
		promReg:     prometheus.NewRegistry(),
		profile:     proxyauth.DefaultProfileOptions(),
		relayConfig: relay.DefaultConfig(),
		logConfig:   log.DefaultConfig(),
	}
}

const long = `Start a local HTTP proxy that routes browser traffic through the upstream proxy of the profile.
Hosts matching the bypass list are connected directly.
When the upstream proxy answers 407 Proxy Authentication Required the static credentials are sent once with the retried request.
The browser is configured to use the relay as its proxy and never sees the challenge.
`

const example = `  # Start the relay with profile a, credentials are read from the .env file
  proxyauth relay --address localhost:3128

  # Start the relay with profile b for Germany and expose metrics
  proxyauth relay --profile b --country de --credentials 'brd-customer-x-zone-y:secret' --api-address localhost:10000
`
