// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

// Challenger is the host that requested authentication.
type Challenger struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// AuthChallenge describes an authentication required event.
// It is supplied by the host, listeners may ignore it entirely.
type AuthChallenge struct {
	RequestID  string     `json:"requestId"`
	URL        string     `json:"url"`
	Method     string     `json:"method"`
	IsProxy    bool       `json:"isProxy"`
	Challenger Challenger `json:"challenger"`
	Scheme     string     `json:"scheme"`
	Realm      string     `json:"realm,omitempty"`

	// Count is the number of times the same request has been challenged, starting at 1.
	Count int `json:"-"`
}

// AuthResponse is the answer of a blocking listener.
// The zero value means the listener did not handle the challenge.
type AuthResponse struct {
	AuthCredentials *Credential `json:"authCredentials,omitempty"`
	Cancel          bool        `json:"cancel,omitempty"`
}

func (r AuthResponse) IsZero() bool {
	return r.AuthCredentials == nil && !r.Cancel
}

// AuthListener handles authentication challenges.
// Blocking listeners must return without suspension, the host holds the request until they do.
type AuthListener func(details AuthChallenge) AuthResponse

// StaticCredentials returns a listener that answers every challenge with c.
// The challenge is not inspected, so the answer is the same for any host, realm or challenge count.
func StaticCredentials(c Credential) AuthListener {
	return func(AuthChallenge) AuthResponse {
		v := c
		return AuthResponse{AuthCredentials: &v}
	}
}
