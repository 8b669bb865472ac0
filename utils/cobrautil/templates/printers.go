// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/pflag"
)

const offset = 10

// HelpFlagPrinter prints a flag with its value type, default, environment variable and wrapped usage.
type HelpFlagPrinter struct {
	envPrefix string
	wrapLimit uint
	out       io.Writer
}

func NewHelpFlagPrinter(out io.Writer, envPrefix string, wrapLimit uint) *HelpFlagPrinter {
	return &HelpFlagPrinter{
		envPrefix: envPrefix,
		wrapLimit: wrapLimit,
		out:       out,
	}
}

func (p *HelpFlagPrinter) PrintHelpFlag(f *pflag.Flag) {
	name, usage := flagNameAndUsage(f)

	var sb strings.Builder
	sb.WriteString("  ")
	if f.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", f.Shorthand)
	} else {
		sb.WriteString("    ")
	}
	fmt.Fprintf(&sb, "--%s%s", f.Name, name)
	if def := defaultValue(f); def != "" {
		if f.Value.Type() == "string" {
			fmt.Fprintf(&sb, " (default '%s')", def)
		} else {
			fmt.Fprintf(&sb, " (default %s)", def)
		}
	}
	if p.envPrefix != "" {
		fmt.Fprintf(&sb, " (env %s)", EnvName(p.envPrefix, f.Name))
	}

	if f.Deprecated != "" {
		usage += fmt.Sprintf(" (DEPRECATED: %s)", f.Deprecated)
	}
	wrapped := wordwrap.WrapString(usage, p.wrapLimit-offset)

	fmt.Fprintf(p.out, "%s\n\t%s\n\n", sb.String(), strings.ReplaceAll(wrapped, "\n", "\n\t"))
}

// YamlFlagPrinter prints a flag as a commented out config file entry.
type YamlFlagPrinter struct {
	out       io.Writer
	wrapLimit uint
}

func NewYamlFlagPrinter(out io.Writer, wrapLimit uint) *YamlFlagPrinter {
	return &YamlFlagPrinter{
		out:       out,
		wrapLimit: wrapLimit,
	}
}

func (p *YamlFlagPrinter) PrintHelpFlag(f *pflag.Flag) {
	_, usage := flagNameAndUsage(f)
	if f.Deprecated != "" {
		usage += fmt.Sprintf("\nDEPRECATED: %s", f.Deprecated)
	}

	buf := new(bytes.Buffer)
	wrapped := wordwrap.WrapString(usage, p.wrapLimit-2)
	fmt.Fprintf(buf, "# %s\n#\n", strings.ReplaceAll(wrapped, "\n", "\n# "))

	def := defaultValue(f)
	if def != "" {
		def = " " + def
	}
	fmt.Fprintf(buf, "#%s:%s\n\n", f.Name, def)

	p.out.Write(buf.Bytes()) //nolint:errcheck // best effort
}

func defaultValue(f *pflag.Flag) string {
	if f.DefValue == "[]" {
		return ""
	}
	return f.DefValue
}

// flagNameAndUsage splits a usage string starting with a value type in brackets, e.g. "<path>Path to a file".
func flagNameAndUsage(f *pflag.Flag) (name, usage string) {
	name, usage = pflag.UnquoteUsage(f)

	if vt := findValueType(usage); vt > 0 {
		name = usage[:vt]
		usage = strings.TrimSpace(usage[vt:])
	} else if f.Value.Type() == "bool" {
		name = ""
	} else {
		if name == "" || name == "string" {
			name = "value"
		}
		name = fmt.Sprintf("<%s>", name)
	}
	if name != "" {
		name = " " + name
	}

	return name, usage
}

// findValueType returns the byte offset of the usage text after leading bracketed value types.
func findValueType(usage string) int {
	if usage == "" {
		return 0
	}

	var (
		open, close byte
		depth       int
	)
	start := func(c byte) {
		switch c {
		case '<':
			open, close, depth = '<', '>', 1
		case '[':
			open, close, depth = '[', ']', 1
		}
	}
	start(usage[0])
	if depth == 0 {
		return 0
	}

	for i := 1; i < len(usage); i++ {
		c := usage[i]
		if depth == 0 {
			if unicode.IsUpper(rune(c)) {
				return i
			}
			start(c)
			continue
		}
		switch c {
		case open:
			depth++
		case close:
			depth--
		}
	}

	if depth > 0 {
		panic("unbalanced brackets in usage string")
	}
	return len(usage)
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // constant

// EnvName returns the environment variable bound to the flag.
func EnvName(envPrefix, flagName string) string {
	s := fmt.Sprintf("%s_%s", envPrefix, flagName)
	s = strings.ToUpper(s)
	s = envReplacer.Replace(s)
	return s
}
