// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pac renders proxy settings as a PAC script and evaluates PAC scripts.
// Scripts run in the Goja JavaScript VM with the standard helper functions available.
package pac

import (
	"regexp"
	"sort"
)

var jsFunctionRegex = regexp.MustCompile(`function\s+([a-zA-Z0-9_]+)\s*\(`)

// SupportedFunctions returns the helper functions available to PAC scripts.
func SupportedFunctions() []string {
	var all []string //nolint:prealloc // not worth it
	for _, m := range jsFunctionRegex.FindAllStringSubmatch(pacUtilsScript, -1) {
		all = append(all, m[1])
	}
	all = append(all, hostFunctions...)
	sort.Strings(all)

	return all
}

var hostFunctions = []string{"dnsResolve", "myIpAddress", "alert"} //nolint:gochecknoglobals // constant
