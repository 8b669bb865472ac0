// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package version holds the build information set with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unset = "dev"

var (
	buildCommit  = unset
	buildTime    = unset
	buildVersion = unset
)

// Version is the build information of the binary.
type Version struct {
	Commit  string `json:"commit"`
	Time    string `json:"time"`
	Version string `json:"version"`
}

// String returns the version as tab separated lines.
func (v *Version) String() string {
	buf := new(strings.Builder)
	fmt.Fprintln(buf, "Version:\t", v.Version)
	fmt.Fprintln(buf, "Built time:\t", v.Time)
	fmt.Fprintln(buf, "Git commit:\t", v.Commit)
	fmt.Fprintln(buf, "Go Arch:\t", runtime.GOARCH)
	fmt.Fprintln(buf, "Go OS:\t\t", runtime.GOOS)
	fmt.Fprintln(buf, "Go Version:\t", runtime.Version())
	return buf.String()
}

func newVersion(bi *debug.BuildInfo) *Version {
	v := &Version{
		Commit:  buildCommit,
		Time:    buildTime,
		Version: buildVersion,
	}
	if bi == nil {
		return v
	}

	// Binaries built without -ldflags still carry the VCS stamp.
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Commit == unset:
			v.Commit = s.Value
		case s.Key == "vcs.time" && v.Time == unset:
			v.Time = s.Value
		}
	}
	if v.Version == unset && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	return v
}

var get = sync.OnceValue(func() *Version {
	bi, _ := debug.ReadBuildInfo()
	return newVersion(bi)
})

// Get returns the version information, it is safe for concurrent use.
func Get() *Version {
	return get()
}
