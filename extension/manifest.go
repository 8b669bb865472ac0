// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"fmt"
	"strconv"

	"github.com/saucelabs/proxyauth"
)

// ManifestVersion is the browser extension manifest format.
type ManifestVersion int

const (
	ManifestV2 ManifestVersion = 2
	ManifestV3 ManifestVersion = 3
)

func ParseManifestVersion(val string) (ManifestVersion, error) {
	v, err := strconv.Atoi(val)
	if err != nil || (v != int(ManifestV2) && v != int(ManifestV3)) {
		return 0, fmt.Errorf("unsupported manifest version: %q", val)
	}
	return ManifestVersion(v), nil
}

func (v ManifestVersion) String() string {
	return strconv.Itoa(int(v))
}

// listenerSpec returns the extra info spec the manifest version permits for a blocking listener.
// Manifest V3 extensions cannot use synchronous blocking listeners.
func (v ManifestVersion) listenerSpec(spec []proxyauth.ExtraInfoSpec) []proxyauth.ExtraInfoSpec {
	if !proxyauth.IsBlocking(spec) {
		return spec
	}
	if v == ManifestV3 {
		return []proxyauth.ExtraInfoSpec{proxyauth.AsyncBlocking}
	}
	return []proxyauth.ExtraInfoSpec{proxyauth.Blocking}
}

const (
	ManifestFile   = "manifest.json"
	BackgroundFile = "background.js"
)

type Background struct {
	Scripts       []string `json:"scripts,omitempty"`
	ServiceWorker string   `json:"service_worker,omitempty"`
}

type Manifest struct {
	ManifestVersion      ManifestVersion `json:"manifest_version"`
	Name                 string          `json:"name"`
	Version              string          `json:"version"`
	Permissions          []string        `json:"permissions"`
	HostPermissions      []string        `json:"host_permissions,omitempty"`
	Background           Background      `json:"background"`
	MinimumChromeVersion string          `json:"minimum_chrome_version,omitempty"`
}

const (
	DefaultName    = "Proxy Auth Extension"
	DefaultVersion = "1.0.0"
)

// NewManifest returns the manifest of the proxy auth extension.
func NewManifest(v ManifestVersion) *Manifest {
	switch v {
	case ManifestV3:
		return &Manifest{
			ManifestVersion: ManifestV3,
			Name:            DefaultName,
			Version:         DefaultVersion,
			Permissions:     []string{"proxy", "webRequest", "webRequestAuthProvider"},
			HostPermissions: []string{proxyauth.AllURLs},
			Background: Background{
				ServiceWorker: BackgroundFile,
			},
		}
	default:
		return &Manifest{
			ManifestVersion: ManifestV2,
			Name:            DefaultName,
			Version:         DefaultVersion,
			Permissions: []string{
				"proxy", "tabs", "unlimitedStorage", "storage",
				proxyauth.AllURLs, "webRequest", "webRequestBlocking",
			},
			Background: Background{
				Scripts: []string{BackgroundFile},
			},
			MinimumChromeVersion: "22.0.0",
		}
	}
}
