// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package proxyauth routes browser traffic through a single fixed upstream proxy
// and answers proxy authentication challenges with a static credential.
//
// The package does not talk to a browser directly.
// Setup submits a ProxyConfig to a ProxySettings host and registers an AuthListener
// with an AuthRequiredEvents host; the extension, relay and chromium packages provide hosts.
package proxyauth
