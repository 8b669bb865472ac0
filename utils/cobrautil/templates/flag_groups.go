// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package templates prints grouped flag help and config file templates.
package templates

import (
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// FlagGroup groups flags whose name starts with one of the prefixes.
type FlagGroup struct {
	Name   string
	Prefix []string
}

type FlagGroups []FlagGroup

type prefixEntry struct {
	prefix string
	group  int
}

// SplitFlagSet splits a flag set into one flag set per group.
// A flag goes to the group with the longest matching prefix, flags matching no group go to the last group.
// The returned flag sets are ordered by the order of the groups.
func SplitFlagSet(g FlagGroups, fs *pflag.FlagSet) []*pflag.FlagSet {
	var entries []prefixEntry
	for i := range g {
		for _, p := range g[i].Prefix {
			entries = append(entries, prefixEntry{p, i})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].prefix) > len(entries[j].prefix)
	})

	result := make([]*pflag.FlagSet, len(g))
	for i := range g {
		result[i] = pflag.NewFlagSet(g[i].Name, pflag.ContinueOnError)
	}
	if len(g) == 0 {
		return result
	}

	fs.VisitAll(func(f *pflag.Flag) {
		for _, e := range entries {
			if strings.HasPrefix(f.Name, e.prefix) {
				result[e.group].AddFlag(f)
				return
			}
		}
		result[len(g)-1].AddFlag(f)
	})
	return result
}
