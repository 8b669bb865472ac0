// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

type DescribeFormat int

const (
	Plain DescribeFormat = iota
	JSON
	YAML
)

// FlagsDescriber renders flag values, it is used to log the effective configuration.
// Values are taken from the flag String method, so flags with redaction never print secrets.
type FlagsDescriber struct {
	Format          DescribeFormat
	ShowChangedOnly bool
	ShowHidden      bool
}

func (d FlagsDescriber) DescribeFlags(fs *pflag.FlagSet) (string, error) {
	vals := d.values(fs)

	switch d.Format {
	case Plain:
		return describePlain(vals), nil
	case JSON:
		b, err := json.Marshal(vals)
		return string(b), err
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(vals); err != nil {
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", errors.New("unknown format")
	}
}

func (d FlagsDescriber) values(fs *pflag.FlagSet) map[string]any {
	vals := make(map[string]any, fs.NFlag())
	fs.VisitAll(func(f *pflag.Flag) {
		switch {
		case f.Name == "help":
			return
		case f.Hidden && !d.ShowHidden:
			return
		case d.ShowChangedOnly && !f.Changed:
			return
		}

		if sv, ok := f.Value.(pflag.SliceValue); ok {
			vals[f.Name] = sv.GetSlice()
			return
		}
		if f.Value.Type() == "bool" {
			if b, err := strconv.ParseBool(f.Value.String()); err == nil {
				vals[f.Name] = b
				return
			}
		}
		vals[f.Name] = f.Value.String()
	})
	return vals
}

func describePlain(vals map[string]any) string {
	keys := maps.Keys(vals)
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := vals[k]
		if s, ok := v.([]string); ok {
			v = plainSlice(s)
		}
		fmt.Fprintf(&sb, "%s=%v\n", k, v)
	}
	return sb.String()
}

// plainSlice joins the values with commas.
// Values are quoted if any of them is empty or contains a separator, so that an empty entry stays visible.
func plainSlice(s []string) string {
	quote := false
	for _, v := range s {
		if v == "" || strings.ContainsAny(v, `, "`) {
			quote = true
			break
		}
	}
	if !quote {
		return strings.Join(s, ",")
	}

	q := make([]string, len(s))
	for i, v := range s {
		q[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(q, ",") + "]"
}
