// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmatczuk/anyflag"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/chromium"
	"github.com/saucelabs/proxyauth/extension"
	"github.com/saucelabs/proxyauth/log"
	"github.com/saucelabs/proxyauth/pac"
	"github.com/saucelabs/proxyauth/relay"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML and TOML. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func Profile(fs *pflag.FlagSet, opts *proxyauth.ProfileOptions) {
	fs.StringVarP(&opts.Name,
		"profile", "p", opts.Name, "<"+strings.Join(proxyauth.ProfileNames(), "|")+">"+
			"Proxy settings preset. "+
			"Profile a uses https to "+proxyauth.SuperproxyHost+" and bypasses localhost. "+
			"Profile b uses http, has an empty bypass entry and adds a country suffix to the username. ")

	fs.VarP(anyflag.NewValueWithRedact[proxyauth.Credential](opts.Credential, &opts.Credential, proxyauth.ParseCredential, RedactCredential),
		"credentials", "u", "<username:password>"+
			"Credentials answered to proxy auth challenges. "+
			"Username and password are URL decoded. "+
			"This allows you to pass in special characters such as @ by using %%40 or pass in a colon with %%3a. ")

	fs.StringVar(&opts.Country,
		"country", opts.Country, "<code>"+
			"Country code appended to the username by profile b. ")

	fs.Var(anyflag.NewValue[proxyauth.Scheme](opts.Scheme, &opts.Scheme, proxyauth.ParseScheme),
		"proxy-scheme", "<"+joinSchemes("|")+">"+
			"Override the scheme of the proxy. ")

	fs.StringVar(&opts.Host,
		"proxy-host", opts.Host, "<host>"+
			"Override the host of the proxy. ")

	fs.Var(anyflag.NewValue[int](opts.Port, &opts.Port, proxyauth.ParsePort),
		"proxy-port", "<port>"+
			"Override the port of the proxy. ")

	fs.StringArrayVar(&opts.Bypass,
		"bypass", opts.Bypass, "<pattern>"+
			"Override the bypass list of the profile. "+
			"The flag can be specified multiple times, an empty value adds an empty entry. "+
			"Patterns are host names with optional wildcards, scheme and port, CIDR blocks or <local>. ")
}

func joinSchemes(sep string) string {
	var sb strings.Builder
	for _, s := range proxyauth.Schemes() {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(NewFileFlag(&cfg.File, log.OpenFile),
		"log-file", "<path>"+
			"Path to the log file, if empty, logs to stderr. ")

	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, log.ParseLevel),
		"log-level", "<error|warn|info|debug>"+
			"Log level. ")

	fs.Var(anyflag.NewValue[log.Format](cfg.Format, &cfg.Format, log.ParseFormat),
		"log-format", "<text|json>"+
			"Log format. ")
}

func RelayConfig(fs *pflag.FlagSet, cfg *relay.Config) {
	fs.StringVar(&cfg.Addr,
		"address", cfg.Addr, "<host:port>"+
			"The relay address to listen on. "+
			"If the host is empty, the relay will listen on all available interfaces. ")

	fs.DurationVar(&cfg.ConnectTimeout,
		"connect-timeout", cfg.ConnectTimeout,
		"The maximum amount of time a dial to the proxy or a bypassed host will wait for a connect to complete. ")

	fs.DurationVar(&cfg.ResponseTimeout,
		"response-timeout", cfg.ResponseTimeout,
		"The maximum amount of time to wait for a response or tunnel data. ")

	if cfg.UpstreamTLSConfig == nil {
		cfg.UpstreamTLSConfig = new(tls.Config)
	}
	fs.BoolVar(&cfg.UpstreamTLSConfig.InsecureSkipVerify,
		"insecure", cfg.UpstreamTLSConfig.InsecureSkipVerify,
		"Don't verify the certificate chain and host name of an https proxy. ")
}

func APIAddress(fs *pflag.FlagSet, addr *string) {
	fs.StringVar(addr,
		"api-address", *addr, "<host:port>"+
			"The API server address to listen on. "+
			"The server exposes metrics, health checks, the applied config and a PAC script. "+
			"If empty, the API server is disabled. ")
}

func ChromiumConfig(fs *pflag.FlagSet, cfg *chromium.Config) {
	fs.StringVar(&cfg.ExecPath,
		"chromium-path", cfg.ExecPath, "<path>"+
			"Chromium executable, if empty chromium and google-chrome are looked up in PATH. ")

	fs.StringVar(&cfg.UserDataDir,
		"user-data-dir", cfg.UserDataDir, "<path>"+
			"Browser profile directory, if empty a temporary directory is used. ")

	fs.BoolVar(&cfg.Headless,
		"headless", cfg.Headless,
		"Run the browser in headless mode. ")

	fs.StringArrayVar(&cfg.Args,
		"chromium-arg", cfg.Args, "<arg>"+
			"Extra browser command line argument, the flag can be specified multiple times. ")

	fs.StringVar(&cfg.StartURL,
		"start-url", cfg.StartURL, "<url>"+
			"Page opened at start. ")

	fs.DurationVar(&cfg.LaunchTimeout,
		"launch-timeout", cfg.LaunchTimeout,
		"The maximum amount of time to wait for the browser DevTools endpoint. ")
}

func ManifestVersion(fs *pflag.FlagSet, v *extension.ManifestVersion) {
	fs.Var(anyflag.NewValue[extension.ManifestVersion](*v, v, extension.ParseManifestVersion),
		"manifest-version", "<2|3>"+
			"Extension manifest version. "+
			"Version 3 registers an asyncBlocking listener and requires Chrome 108 or later. ")
}

func PACSource(fs *pflag.FlagSet, u **url.URL) {
	fs.VarP(anyflag.NewValue[*url.URL](*u, u, pac.ParseSource),
		"pac", "", "<path or URL>"+
			"PAC script to evaluate, if empty the script generated for the profile is used. "+
			"It can be a local file, - for stdin, a file, http or https URL, or data:base64,<encoded script>. ")
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func MarkFlagRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func AutoMarkFlagFilename(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.HasPrefix(f.Usage, "<path") ||
			strings.HasSuffix(f.Name, "-file") ||
			strings.HasSuffix(f.Name, "-dir") {
			MarkFlagFilename(cmd, f.Name)
		}
	})
}

func MarkFlagFilename(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagFilename(name); err != nil {
			panic(fmt.Sprintf("mark %s: %v", name, err))
		}
	}
}
