// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"testing"
)

func TestMetrics(t *testing.T) {
	r, err := Metrics()
	if err != nil {
		t.Fatal(err)
	}

	mfs, err := r.Gather()
	if err != nil {
		t.Fatal(err)
	}

	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, name := range []string{"proxyauth_version", "go_env_gomaxprocs", "go_goroutines"} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
