// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/fetch"
	"github.com/mailru/easyjson"
	"github.com/saucelabs/proxyauth"
)

type attempt struct {
	n  int
	at time.Time
}

func (b *Browser) handleEvent(c *conn, msg *cdproto.Message) {
	ctx, cancel := b.commandContext(c, msg.SessionID)
	defer cancel()

	switch msg.Method { //nolint:exhaustive // only fetch events are handled
	case cdproto.EventFetchRequestPaused:
		ev := new(fetch.EventRequestPaused)
		if err := easyjson.Unmarshal(msg.Params, ev); err != nil {
			b.log.Warn("invalid event", "method", msg.Method, "error", err)
			return
		}
		if err := fetch.ContinueRequest(ev.RequestID).Do(ctx); err != nil {
			b.log.Warn("continue request failed", "request_id", ev.RequestID, "error", err)
		}
	case cdproto.EventFetchAuthRequired:
		ev := new(fetch.EventAuthRequired)
		if err := easyjson.Unmarshal(msg.Params, ev); err != nil {
			b.log.Warn("invalid event", "method", msg.Method, "error", err)
			return
		}
		res := b.authResponse(ev)
		if err := fetch.ContinueWithAuth(ev.RequestID, res).Do(ctx); err != nil {
			b.log.Warn("continue with auth failed", "request_id", ev.RequestID, "error", err)
		}
	}
}

// authResponse answers a challenge through the dispatcher.
// A request is answered once, a repeated challenge means the credentials were rejected and it is cancelled.
func (b *Browser) authResponse(ev *fetch.EventAuthRequired) *fetch.AuthChallengeResponse {
	ch := authChallenge(ev, b.attempt(ev.RequestID))
	if ch.Count > 1 {
		b.log.Warn("credentials rejected", "request_id", ch.RequestID, "url", ch.URL, "challenger", ch.Challenger.Host)
		return &fetch.AuthChallengeResponse{Response: fetch.AuthChallengeResponseResponseCancelAuth}
	}

	res, result := b.Dispatch(ch)
	b.log.Debug("auth challenge", "request_id", ch.RequestID, "url", ch.URL, "proxy", ch.IsProxy, "realm", ch.Realm, "result", result)

	switch result {
	case proxyauth.Answered:
		return &fetch.AuthChallengeResponse{
			Response: fetch.AuthChallengeResponseResponseProvideCredentials,
			Username: res.AuthCredentials.Username,
			Password: res.AuthCredentials.Password,
		}
	case proxyauth.Cancelled:
		return &fetch.AuthChallengeResponse{Response: fetch.AuthChallengeResponseResponseCancelAuth}
	default:
		return &fetch.AuthChallengeResponse{Response: fetch.AuthChallengeResponseResponseDefault}
	}
}

// attempt returns how many times the request has been challenged, including this time.
func (b *Browser) attempt(id fetch.RequestID) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for k, v := range b.attempts {
		if now.Sub(v.at) > attemptTTL {
			delete(b.attempts, k)
		}
	}
	a := b.attempts[id]
	a.n++
	a.at = now
	b.attempts[id] = a

	return a.n
}

func authChallenge(ev *fetch.EventAuthRequired, count int) proxyauth.AuthChallenge {
	ch := proxyauth.AuthChallenge{
		RequestID: string(ev.RequestID),
		Count:     count,
	}
	if ev.Request != nil {
		ch.URL = ev.Request.URL + ev.Request.URLFragment
		ch.Method = ev.Request.Method
	}
	if ac := ev.AuthChallenge; ac != nil {
		ch.IsProxy = ac.Source == fetch.AuthChallengeSourceProxy
		ch.Scheme = strings.ToLower(ac.Scheme)
		ch.Realm = ac.Realm
		ch.Challenger = challenger(ac.Origin)
	}
	return ch
}

// challenger parses the origin of a challenge, the port defaults to the scheme port.
func challenger(origin string) proxyauth.Challenger {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return proxyauth.Challenger{Host: origin}
	}

	c := proxyauth.Challenger{Host: u.Hostname()}
	if p, err := strconv.Atoi(u.Port()); err == nil {
		c.Port = p
	} else if s, err := proxyauth.ParseScheme(u.Scheme); err == nil {
		c.Port = s.DefaultPort()
	}
	return c
}
