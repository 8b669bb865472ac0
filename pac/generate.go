// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"text/template"

	"github.com/saucelabs/proxyauth"
)

var scriptTemplate = template.Must(template.New("pac").Parse(`// {{ .Comment }}
function FindProxyForURL(url, host) {
    host = host.toLowerCase();
    var scheme = url.substring(0, url.indexOf(":")).toLowerCase();
    var port = __port(url, scheme);
{{- if .ImplicitLoopback }}

    if (__isLoopbackOrLinkLocal(host)) {
        return "DIRECT";
    }
{{- end }}
{{- range .Conditions }}
    if ({{ . }}) {
        return "DIRECT";
    }
{{- end }}

    return {{ .Result }};
}

function __port(url, scheme) {
    var rest = url.substring(url.indexOf("://") + 3);
    var end = rest.search(/[\/?#]/);
    if (end >= 0) {
        rest = rest.substring(0, end);
    }
    rest = rest.substring(rest.lastIndexOf("@") + 1);
    var m = /:(\d+)$/.exec(rest);
    if (m != null) {
        return m[1];
    }
    if (scheme == "https" || scheme == "wss") {
        return "443";
    }
    if (scheme == "ftp") {
        return "21";
    }
    return "80";
}

function __isIPv4(host) {
    return /^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$/.test(host);
}
{{- if .ImplicitLoopback }}

function __isLoopbackOrLinkLocal(host) {
    if (host == "localhost" || dnsDomainIs(host, ".localhost")) {
        return true;
    }
    if (__isIPv4(host)) {
        return isInNet(host, "127.0.0.0", "255.0.0.0") || isInNet(host, "169.254.0.0", "255.255.0.0");
    }
    return host == "::1" || /^fe[89ab][0-9a-f]:/.test(host);
}
{{- end }}
`))

type scriptData struct {
	Comment          string
	ImplicitLoopback bool
	Conditions       []string
	Result           string
}

// Generate renders the proxy config as a PAC script.
// Bypass rules evaluate to DIRECT, everything else goes through the single proxy.
func Generate(cfg *proxyauth.ProxyConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	d := scriptData{
		Comment: fmt.Sprintf("proxyauth %s", cfg.Mode),
		Result:  quote(DIRECT.String()),
	}

	switch cfg.Mode {
	case proxyauth.DirectMode:
	case proxyauth.FixedServersMode:
		sp := cfg.SingleProxy()
		p := Proxy{Mode: modeForScheme(sp.Scheme), Host: sp.Host, Port: fmt.Sprint(sp.Port)}
		d.Result = quote(p.String())
		d.Comment = fmt.Sprintf("proxyauth %s %s bypass=%q", cfg.Mode, cfg.ProxyURL(), cfg.BypassList())

		br, err := proxyauth.ParseBypassList(cfg.BypassList())
		if err != nil {
			return "", err
		}
		d.ImplicitLoopback = br.ImplicitLoopback()
		for _, e := range br.Entries() {
			c, err := condition(e)
			if err != nil {
				return "", err
			}
			d.Conditions = append(d.Conditions, c)
		}
	default:
		return "", fmt.Errorf("mode %s cannot be expressed as a PAC script", cfg.Mode)
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func condition(e proxyauth.BypassEntry) (string, error) {
	switch e.Kind {
	case proxyauth.LocalBypass:
		return "isPlainHostName(host)", nil
	case proxyauth.CIDRBypass:
		if !e.Prefix.Addr().Is4() {
			return "", fmt.Errorf("bypass rule %s: IPv6 ranges cannot be expressed as a PAC script", e.Prefix)
		}
		mask := net.CIDRMask(e.Prefix.Bits(), 32)
		return fmt.Sprintf("__isIPv4(host) && isInNet(host, %s, %s)",
			quote(e.Prefix.Addr().String()), quote(net.IP(mask).String())), nil
	case proxyauth.HostBypass:
		var c []string
		if e.Scheme != "" {
			c = append(c, "scheme == "+quote(e.Scheme))
		}
		if e.Port != "" {
			c = append(c, "port == "+quote(e.Port))
		}

		h := "host == " + quote(e.Host)
		if strings.Contains(e.Host, "*") {
			h = "shExpMatch(host, " + quote(e.Host) + ")"
			if suffix, ok := strings.CutPrefix(e.Host, "*."); ok && !strings.Contains(suffix, "*") {
				h = "(" + h + " || host == " + quote(suffix) + ")"
			}
		}
		c = append(c, h)

		return strings.Join(c, " && "), nil
	default:
		return "", fmt.Errorf("unknown bypass rule kind %d", e.Kind)
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s) //nolint:errchkjson // strings always marshal
	return string(b)
}
