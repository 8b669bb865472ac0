// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is a configuration for the loggers.
type Config struct {
	File   *os.File
	Level  Level
	Format Format
}

func DefaultConfig() *Config {
	return &Config{
		File:   nil,
		Level:  InfoLevel,
		Format: TextFormat,
	}
}

type Level int

// Levels start from 1 to avoid zero value in help printer.
const (
	ErrorLevel Level = 1 + iota
	WarnLevel
	InfoLevel
	DebugLevel
)

func Levels() []Level {
	return []Level{ErrorLevel, WarnLevel, InfoLevel, DebugLevel}
}

func (l Level) String() string {
	return [4]string{"error", "warn", "info", "debug"}[l-1]
}

func ParseLevel(val string) (Level, error) {
	for _, l := range Levels() {
		if strings.EqualFold(val, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", val)
}

type Format int

// Formats start from 1 to avoid zero value in help printer.
const (
	TextFormat Format = 1 + iota
	JSONFormat
)

func (m Format) String() string {
	return [2]string{"text", "json"}[m-1]
}

func ParseFormat(val string) (Format, error) {
	switch strings.ToLower(val) {
	case "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", val)
	}
}

// OpenFile opens the log file for appending, creating parent directories as needed.
func OpenFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, DefaultFileFlags, DefaultFileMode)
}
