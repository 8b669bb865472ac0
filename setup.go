// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proxyauth

import (
	"context"
	"fmt"

	"github.com/saucelabs/proxyauth/log"
)

// Setup applies the profile to the host.
// It submits the proxy configuration with regular scope and registers a static credential listener
// for all URLs in blocking mode.
//
// A rejected proxy settings call is logged and otherwise ignored, the host keeps its previous settings.
// There is no guard against calling Setup more than once, each call registers another listener.
func Setup(ctx context.Context, settings ProxySettings, events AuthRequiredEvents, p *Profile, log log.StructuredLogger) error {
	details := SettingsDetails{
		Value: p.Config.Clone(),
		Scope: RegularScope,
	}
	if err := settings.Set(ctx, details); err != nil {
		log.ErrorContext(ctx, "proxy settings rejected", "profile", p.Name, "error", err)
	} else {
		log.InfoContext(ctx, "proxy settings applied", "profile", p.Name, "proxy", details.Value.ProxyURL(), "bypass", details.Value.BypassList())
	}

	if err := events.AddListener(StaticCredentials(p.Credential), AllURLsFilter(), []ExtraInfoSpec{Blocking}); err != nil {
		return fmt.Errorf("register auth listener: %w", err)
	}
	log.InfoContext(ctx, "auth listener registered", "profile", p.Name, "username", p.Credential.Username)

	return nil
}
