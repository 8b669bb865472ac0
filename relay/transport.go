// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"bytes"
	"io"
	"net/http"

	"github.com/saucelabs/proxyauth"
)

// transport forwards plain HTTP requests, either directly or through the upstream proxy.
// A 407 from the upstream is answered at most once, if no listener answers the 407 is returned to the client.
type transport struct {
	r *Relay
}

func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := t.r
	u := r.upstream()

	if u.direct(req.URL.Scheme, req.URL.Host) {
		r.metrics.request(routeDirect, "http")
		return r.direct.RoundTrip(req)
	}
	r.metrics.request(routeProxy, "http")

	cred := u.cachedAuth()

	// With a cached credential the first attempt is expected to pass, a request body is not buffered for a replay.
	replayable := req.GetBody != nil
	if !replayable && (cred == nil || req.Body == nil || req.Body == http.NoBody) {
		var err error
		if replayable, err = makeReplayable(req); err != nil {
			return nil, err
		}
	}

	for dispatched := false; ; dispatched = true {
		res, err := u.transport.RoundTrip(withProxyAuth(req, cred))
		if err != nil {
			r.metrics.error("round_trip")
			return nil, err
		}
		if res.StatusCode != http.StatusProxyAuthRequired {
			return res, nil
		}
		if dispatched {
			u.auth.Store(nil)
			r.metrics.error("auth")
			return res, nil
		}

		// The answer is cached even if the request cannot be replayed, so that the client retry passes.
		ch := r.challenge(u, req.URL, req.Method, res, challengeCount(cred))
		c, ok := r.answer(u, ch)
		if !ok || !replayable {
			return res, nil
		}
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096)) //nolint:errcheck // best effort
		res.Body.Close()
		cred = c
	}
}

// withProxyAuth returns a copy of req with the Proxy-Authorization header set to cred.
// The body is renewed if req is replayable.
func withProxyAuth(req *http.Request, cred *proxyauth.Credential) *http.Request {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		if b, err := req.GetBody(); err == nil {
			out.Body = b
		}
	}
	out.Header.Del("Proxy-Authorization")
	if cred != nil {
		out.Header.Set("Proxy-Authorization", cred.BasicAuth())
	}
	return out
}

// maxReplayBodySize is the largest request body buffered so that the request can be sent again after a challenge.
const maxReplayBodySize = 1 << 20

// makeReplayable buffers the request body up to maxReplayBodySize and sets GetBody.
// A larger body is streamed once and the request is reported as not replayable.
func makeReplayable(req *http.Request) (bool, error) {
	if req.GetBody != nil {
		return true, nil
	}
	if req.Body == nil || req.Body == http.NoBody {
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		return true, nil
	}

	b, err := io.ReadAll(io.LimitReader(req.Body, maxReplayBodySize+1))
	if err != nil {
		req.Body.Close()
		return false, err
	}
	if len(b) > maxReplayBodySize {
		req.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(b), req.Body), req.Body}
		return false, nil
	}

	req.Body.Close()
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	return true, nil
}
