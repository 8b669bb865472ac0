// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/dialvia"
)

// UpstreamError is returned when the upstream proxy refuses a tunnel.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream proxy refused connection: %s", e.Status)
}

// parseProxyAuthenticate returns the auth scheme and realm of the first challenge.
func parseProxyAuthenticate(h http.Header) (scheme, realm string) {
	v := strings.TrimSpace(h.Get("Proxy-Authenticate"))
	if v == "" {
		return "", ""
	}
	scheme, params, _ := strings.Cut(v, " ")
	for _, p := range strings.Split(params, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && strings.EqualFold(k, "realm") {
			realm = strings.Trim(val, `"`)
			break
		}
	}
	return strings.ToLower(scheme), realm
}

func (r *Relay) challenge(u *upstream, reqURL *url.URL, method string, res *http.Response, count int) proxyauth.AuthChallenge {
	scheme, realm := parseProxyAuthenticate(res.Header)
	return proxyauth.AuthChallenge{
		RequestID: strconv.FormatUint(r.requestID.Add(1), 10),
		URL:       reqURL.String(),
		Method:    method,
		IsProxy:   true,
		Challenger: proxyauth.Challenger{
			Host: u.proxy.Host,
			Port: u.proxy.Port,
		},
		Scheme: scheme,
		Realm:  realm,
		Count:  count,
	}
}

// answer dispatches the challenge and caches the credential if a listener provided one.
func (r *Relay) answer(u *upstream, ch proxyauth.AuthChallenge) (*proxyauth.Credential, bool) {
	res, result := r.Dispatch(ch)
	r.metrics.challenge(result)
	r.log.Debug("proxy auth challenge", "request_id", ch.RequestID, "url", ch.URL, "realm", ch.Realm, "count", ch.Count, "result", result)

	if result != proxyauth.Answered {
		u.auth.Store(nil)
		return nil, false
	}
	c := *res.AuthCredentials
	u.auth.Store(&c)
	return &c, true
}

// challengeCount is the Count of a challenge answered to a request that carried cred.
func challengeCount(cred *proxyauth.Credential) int {
	if cred != nil {
		return 2
	}
	return 1
}

// connectWithAuth sends CONNECT to the upstream and answers a 407 at most once.
func (r *Relay) connectWithAuth(ctx context.Context, u *upstream, network, addr string) (net.Conn, error) {
	d := dialvia.HTTPProxy(r.dialer.DialContext, u.proxyURL, r.config.UpstreamTLSConfig)
	target := &url.URL{Scheme: "https", Host: addr, Path: "/"}

	cred := u.cachedAuth()
	for dispatched := false; ; dispatched = true {
		var h http.Header
		if cred != nil {
			h = http.Header{"Proxy-Authorization": {cred.BasicAuth()}}
		}

		res, conn, err := d.DialContextR(ctx, network, addr, h)
		if err != nil {
			r.metrics.error("dial")
			return nil, err
		}
		if res.StatusCode/100 == 2 {
			return conn, nil
		}
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096)) //nolint:errcheck // best effort
		res.Body.Close()
		conn.Close()

		uerr := &UpstreamError{StatusCode: res.StatusCode, Status: res.Status}
		if res.StatusCode != http.StatusProxyAuthRequired {
			r.metrics.error("status")
			return nil, uerr
		}
		if dispatched {
			u.auth.Store(nil)
			r.metrics.error("auth")
			return nil, uerr
		}

		var ok bool
		if cred, ok = r.answer(u, r.challenge(u, target, http.MethodConnect, res, challengeCount(cred))); !ok {
			r.metrics.error("auth")
			return nil, uerr
		}
	}
}
